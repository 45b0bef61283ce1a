package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api"
	adminapi "github.com/Nixie-Tech-LLC/memo/internal/http/api/admin/endpoints"
	scheduleapi "github.com/Nixie-Tech-LLC/memo/internal/http/api/schedules/endpoints"
	userapi "github.com/Nixie-Tech-LLC/memo/internal/http/api/users/endpoints"
	"github.com/Nixie-Tech-LLC/memo/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
	"github.com/Nixie-Tech-LLC/memo/internal/notify"
	"github.com/Nixie-Tech-LLC/memo/internal/schedule"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Codec       *auth.TokenCodec
	Store       db.Store
	Engine      *schedule.Engine
	Notifier    notify.Publisher
	Throttle    userapi.LoginThrottle
	AuthLimiter *middleware.RateLimiter
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, d Dependencies) {
	r.Use(middleware.RequestLogger())
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"X-Request-ID",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"Authorization",
			"X-Request-ID",
		},
		AllowCredentials: false,
	}))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	schedules := scheduleapi.NewScheduleController(d.Store, d.Engine, d.Notifier)

	api.MountGroup(r, api.GroupConfig{
		Middleware: []gin.HandlerFunc{middleware.RateLimit(d.AuthLimiter)},
	},
		userapi.AccountPublicModule(d.Codec, d.Store, d.Throttle),
	)

	api.MountGroup(r, api.GroupConfig{
		Optional: true,
		Codec:    d.Codec,
	},
		scheduleapi.PublicModule(schedules),
	)

	api.MountGroup(r, api.GroupConfig{
		Auth:  true,
		Codec: d.Codec,
	},
		userapi.AccountSessionModule(d.Store),
		scheduleapi.OwnerModule(schedules),
		scheduleapi.CommentModule(schedules),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/admin",
		Auth:   true,
		Role:   model.RoleAdmin,
		Codec:  d.Codec,
	},
		adminapi.UserAdminModule(d.Store),
	)
}
