package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

const userColumns = `id, email, hashed_password, name, role, created_at, updated_at`

// CreateUser inserts u and fills its ID and timestamps. ErrDuplicate on a taken email.
func (s *pgStore) CreateUser(ctx context.Context, u *model.User) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `
	INSERT INTO users (email, hashed_password, name, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, now(), now())
	RETURNING id, created_at, updated_at;`
	err := s.db.QueryRowxContext(ctx, q, u.Email, u.HashedPassword, u.Name, u.Role).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return err
	}
	return nil
}

// GetUserByEmail returns ErrNotFound if no user has the email.
func (s *pgStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var u model.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns ErrNotFound if the user does not exist.
func (s *pgStore) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var u model.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int("user_id", id).Msg("failed to get user by id")
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) ListUsers(ctx context.Context) ([]model.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	out := []model.User{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+userColumns+` FROM users ORDER BY id;`); err != nil {
		log.Error().Err(err).Msg("ListUsers failed")
		return nil, err
	}
	return out, nil
}

// UpdateUserProfile updates email and name and bumps updated_at.
func (s *pgStore) UpdateUserProfile(ctx context.Context, id int, email, name string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `
	UPDATE users
	SET email = $2,
	name = $3,
	updated_at = now()
	WHERE id = $1;`
	res, err := s.db.ExecContext(ctx, q, id, email, name)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("failed to update user profile - exec")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("failed to update user profile - rows affected")
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user together with everything that references it:
// its comments, its collaborator edges, its schedules (with their comments and
// edges). All statements run in one transaction.
func (s *pgStore) DeleteUser(ctx context.Context, id int) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		stmts := []string{
			`DELETE FROM comments
			  WHERE author_id = $1
			     OR schedule_id IN (SELECT id FROM schedules WHERE owner_id = $1);`,
			`DELETE FROM schedule_users
			  WHERE user_id = $1
			     OR schedule_id IN (SELECT id FROM schedules WHERE owner_id = $1);`,
			`DELETE FROM schedules WHERE owner_id = $1;`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1;`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Error().Err(err).Int("user_id", id).Msg("DeleteUser failed")
	}
	return err
}
