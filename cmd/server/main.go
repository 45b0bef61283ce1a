package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/config"
	"github.com/Nixie-Tech-LLC/memo/internal/http/api"
	"github.com/Nixie-Tech-LLC/memo/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/memo/internal/logging"
	"github.com/Nixie-Tech-LLC/memo/internal/notify"
	"github.com/Nixie-Tech-LLC/memo/internal/redis"
	"github.com/Nixie-Tech-LLC/memo/internal/schedule"
)

func main() {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel, cfg.Development())
	api.SetTimeZone(cfg.Location)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := InitStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer closeStore()

	if err := EnsureAdmin(ctx, store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to create administrator")
	}

	var throttle *redis.LoginThrottle
	if cfg.RedisAddress != "" {
		rdb, err := redis.InitRedis(ctx, cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Str("address", cfg.RedisAddress).Msg("failed to connect to redis")
		}
		defer func(c *goredis.Client) { _ = c.Close() }(rdb)
		throttle = redis.NewLoginThrottle(rdb)
		log.Info().Str("address", cfg.RedisAddress).Msg("login throttle enabled")
	} else {
		throttle = redis.NewLoginThrottle(nil)
		log.Warn().Msg("REDIS_ADDRESS not set; login throttle disabled")
	}

	var notifier notify.Publisher = notify.Nop{}
	if cfg.MQTTBrokerURL != "" {
		m, err := notify.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			// notifications are best effort; the API still serves without them
			log.Error().Err(err).Msg("MQTT unavailable; notifications disabled")
		} else {
			notifier = m
		}
	}
	defer notifier.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, Dependencies{
		Codec:       auth.NewTokenCodec(cfg.JWTSecret),
		Store:       store,
		Engine:      schedule.NewEngine(store, cfg.Location),
		Notifier:    notifier,
		Throttle:    throttle,
		AuthLimiter: middleware.NewRateLimiter(cfg.AuthRatePerSec, cfg.AuthRateBurst),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
