package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/config"
	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/db/memstore"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

// InitStore selects and returns the configured storage backend. The returned
// func releases it.
func InitStore(ctx context.Context, cfg *config.Config) (db.Store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memstore.New(), func() {}, nil
	case "postgres":
		if err := db.Init(ctx, cfg.DatabaseURL); err != nil {
			return nil, nil, fmt.Errorf("db init: %w", err)
		}
		if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
			_ = db.DB.Close()
			return nil, nil, fmt.Errorf("db migrate: %w", err)
		}
		closeFn := func() {
			if err := db.DB.Close(); err != nil {
				log.Error().Err(err).Msg("closing database")
			}
		}
		return db.NewStore(db.DB, cfg.StoreTimeout), closeFn, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// EnsureAdmin creates the configured administrator if no user has that email.
func EnsureAdmin(ctx context.Context, store db.Store, email, password string) error {
	if email == "" {
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := model.User{Email: email, HashedPassword: hashed, Name: "admin", Role: model.RoleAdmin}
	if err := store.CreateUser(ctx, &u); err != nil && !errors.Is(err, db.ErrDuplicate) {
		return err
	}
	log.Info().Str("email", email).Msg("administrator account created")
	return nil
}
