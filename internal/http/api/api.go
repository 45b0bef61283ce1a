package api

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/memo/internal/http/respond"
)

// handlers receive the identity as an argument; they never look it up themselves
type HandlerFuncWithAuth func(ctx *gin.Context, id auth.Identity) (any, error)
type HandlerFuncOptionalAuth func(ctx *gin.Context, id *auth.Identity) (any, error)
type HandlerFunc func(ctx *gin.Context) (any, error)

type created struct{ value any }

// Created makes the resolver answer 201 instead of 200.
func Created(v any) any { return created{value: v} }

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := middleware.CurrentIdentity(ctx)
		if !ok {
			respond.Error(ctx, apperr.Unauthenticated("authentication required"))
			return
		}
		result, err := h(ctx, id)
		write(ctx, result, err)
	}
}

func ResolveEndpointOptionalAuth(h HandlerFuncOptionalAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var actor *auth.Identity
		if id, ok := middleware.CurrentIdentity(ctx); ok {
			actor = &id
		}
		result, err := h(ctx, actor)
		write(ctx, result, err)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, err := h(ctx)
		write(ctx, result, err)
	}
}

func write(ctx *gin.Context, result any, err error) {
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	if c, ok := result.(created); ok {
		respond.OK(ctx, http.StatusCreated, c.value)
		return
	}
	respond.OK(ctx, http.StatusOK, result)
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// BindJSON decodes the body into dst and turns binding failures into a
// ValidationFailed error carrying one message per field.
func BindJSON(ctx *gin.Context, dst any) error {
	err := ctx.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return apperr.Validation("validation failed", fields)
	}
	var perr *time.ParseError
	if errors.As(err, &perr) {
		return apperr.Validation("times must use the format "+MinuteLayout, nil)
	}
	return apperr.Validation("malformed request body", nil)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " items"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "is invalid"
}

// ParamID reads a positive integer path parameter.
func ParamID(ctx *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid path parameter", map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}
