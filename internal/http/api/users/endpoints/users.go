package endpoints

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api/users/packets"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

// LoginThrottle limits repeated failed logins for one email.
type LoginThrottle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	Failed(ctx context.Context, email string)
	Reset(ctx context.Context, email string)
}

// AccountPublicModule mounts /users/join and /users/login.
func AccountPublicModule(codec *auth.TokenCodec, store db.Store, throttle LoginThrottle) api.Module {
	ctl := newAccountManager(codec, store, throttle)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/users/join", ctl.join)
		c.PUBLIC_POST("/users/login", ctl.login)
	})
}

// AccountSessionModule mounts the caller's own profile endpoints (token required).
func AccountSessionModule(store db.Store) api.Module {
	ctl := newAccountManager(nil, store, nil)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/users/me", ctl.getProfile)
		c.PATCH("/users/me", ctl.updateProfile)
		c.DELETE("/users/me", ctl.deleteProfile)
	})
}

type AccountManager struct {
	codec    *auth.TokenCodec
	store    db.Store
	throttle LoginThrottle
}

func newAccountManager(codec *auth.TokenCodec, store db.Store, throttle LoginThrottle) *AccountManager {
	return &AccountManager{codec: codec, store: store, throttle: throttle}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// POST /users/join
func (a *AccountManager) join(ctx *gin.Context) (any, error) {
	var request packets.JoinRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(request.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := model.User{
		Email:          normalizeEmail(request.Email),
		HashedPassword: hashed,
		Name:           strings.TrimSpace(request.Name),
		Role:           model.RoleUser,
	}
	if err := a.store.CreateUser(ctx.Request.Context(), &u); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			log.Warn().Str("email", u.Email).Msg("join email already registered")
			return nil, apperr.Conflict("email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Info().Int("user_id", u.ID).Msg("user joined")
	return api.Created(packets.Profile(u)), nil
}

// POST /users/login
func (a *AccountManager) login(ctx *gin.Context) (any, error) {
	var request packets.LoginRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}
	email := normalizeEmail(request.Email)
	rctx := ctx.Request.Context()

	blocked, err := a.throttle.Blocked(rctx, email)
	if err != nil {
		log.Warn().Err(err).Msg("login throttle unavailable")
	}
	if blocked {
		return nil, apperr.New(apperr.TooManyRequests, "too many failed login attempts, try again later")
	}

	found, err := a.store.GetUserByEmail(rctx, email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if found == nil || !auth.CheckPassword(found.HashedPassword, request.Password) {
		a.throttle.Failed(rctx, email)
		return nil, apperr.InvalidToken("invalid credentials")
	}
	a.throttle.Reset(rctx, email)

	token, err := a.codec.Issue(auth.Identity{UserID: found.ID, Role: found.Role})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	ctx.Header("Authorization", "Bearer "+token)

	return packets.LoginResponse{Token: token, User: packets.Profile(*found)}, nil
}

// GET /users/me
func (a *AccountManager) getProfile(ctx *gin.Context, id auth.Identity) (any, error) {
	u, err := a.store.GetUserByID(ctx.Request.Context(), id.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id.UserID, err)
	}
	return packets.Profile(*u), nil
}

// PATCH /users/me
func (a *AccountManager) updateProfile(ctx *gin.Context, id auth.Identity) (any, error) {
	var request packets.UpdateProfileRequest
	if err := api.BindJSON(ctx, &request); err != nil {
		return nil, err
	}

	rctx := ctx.Request.Context()
	err := a.store.UpdateUserProfile(rctx, id.UserID, normalizeEmail(request.Email), strings.TrimSpace(request.Name))
	switch {
	case errors.Is(err, db.ErrDuplicate):
		return nil, apperr.Conflict("email already in use")
	case errors.Is(err, db.ErrNotFound):
		return nil, apperr.NotFound("user not found")
	case err != nil:
		return nil, fmt.Errorf("update user %d: %w", id.UserID, err)
	}

	return a.getProfile(ctx, id)
}

// DELETE /users/me
func (a *AccountManager) deleteProfile(ctx *gin.Context, id auth.Identity) (any, error) {
	err := a.store.DeleteUser(ctx.Request.Context(), id.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("delete user %d: %w", id.UserID, err)
	}
	log.Info().Int("user_id", id.UserID).Msg("user deleted own account")
	return nil, nil
}
