package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

// Module is a pluggable feature that attaches its endpoints to a Controller (a gin group).
type Module interface {
	Mount(c *Controller)
}

// ModuleFunc lets you define a Module with a simple function.
type ModuleFunc func(c *Controller)

func (f ModuleFunc) Mount(c *Controller) { f(c) }

// GroupConfig tells the api package how to mount a group.
type GroupConfig struct {
	Prefix     string
	Auth       bool              // token required
	Optional   bool              // token decoded when present
	Role       model.Role        // ADMIN restricts the group to admins
	Codec      *auth.TokenCodec  // required if Auth or Optional
	Middleware []gin.HandlerFunc // runs before the auth stage
}

// MountGroup mounts one or more Modules under a prefix. The pipeline is
// cfg.Middleware, then the auth stage, then the endpoint.
func MountGroup(parent gin.IRouter, cfg GroupConfig, modules ...Module) {
	grp := parent.Group(cfg.Prefix)

	for _, mw := range cfg.Middleware {
		grp.Use(mw)
	}
	if cfg.Auth || cfg.Optional {
		if cfg.Codec == nil {
			log.Fatal().Str("prefix", cfg.Prefix).Msg("api.MountGroup: auth enabled but no token codec")
		}
	}
	switch {
	case cfg.Auth:
		role := cfg.Role
		if role == "" {
			role = model.RoleUser
		}
		grp.Use(middleware.RequireRole(cfg.Codec, role))
	case cfg.Optional:
		grp.Use(middleware.OptionalIdentity(cfg.Codec))
	}

	controller := &Controller{Group: grp}
	for _, m := range modules {
		m.Mount(controller)
	}
}

// Controller registers endpoints on a group. The plain verbs expect an
// authenticated group; PUBLIC_ and OPTIONAL_ variants do not.
type Controller struct {
	Group *gin.RouterGroup
}

func (c *Controller) GET(path string, h HandlerFuncWithAuth) {
	c.Group.GET(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) POST(path string, h HandlerFuncWithAuth) {
	c.Group.POST(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) PATCH(path string, h HandlerFuncWithAuth) {
	c.Group.PATCH(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) DELETE(path string, h HandlerFuncWithAuth) {
	c.Group.DELETE(path, ResolveEndpointWithAuth(h))
}

func (c *Controller) PUBLIC_GET(path string, h HandlerFunc) {
	c.Group.GET(path, ResolveEndpoint(h))
}

func (c *Controller) PUBLIC_POST(path string, h HandlerFunc) {
	c.Group.POST(path, ResolveEndpoint(h))
}

func (c *Controller) OPTIONAL_GET(path string, h HandlerFuncOptionalAuth) {
	c.Group.GET(path, ResolveEndpointOptionalAuth(h))
}
