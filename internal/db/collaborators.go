package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

func (s *pgStore) CollaboratorIDs(ctx context.Context, scheduleID int) ([]int, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	ids := []int{}
	err := s.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM schedule_users WHERE schedule_id = $1 ORDER BY user_id;`, scheduleID)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("CollaboratorIDs failed")
		return nil, err
	}
	return ids, nil
}

func (s *pgStore) ListCollaborators(ctx context.Context, scheduleID int) ([]model.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	out := []model.User{}
	const q = `
	SELECT u.id, u.email, u.hashed_password, u.name, u.role, u.created_at, u.updated_at
	  FROM schedule_users su
	  JOIN users u ON u.id = su.user_id
	 WHERE su.schedule_id = $1
	 ORDER BY u.id;`
	if err := s.db.SelectContext(ctx, &out, q, scheduleID); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("ListCollaborators failed")
		return nil, err
	}
	return out, nil
}

// WithScheduleLock runs fn in a transaction holding a row lock on the schedule,
// so concurrent collaborator changes to the same schedule are serialized.
// Returns ErrNotFound if the schedule does not exist.
func (s *pgStore) WithScheduleLock(ctx context.Context, scheduleID int, fn func(ctx context.Context, tx CollaboratorTx) error) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var id int
		err := tx.GetContext(ctx, &id, `SELECT id FROM schedules WHERE id = $1 FOR UPDATE;`, scheduleID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			log.Error().Err(err).Int("schedule_id", scheduleID).Msg("lock schedule failed")
			return err
		}
		return fn(ctx, &pgCollaboratorTx{tx: tx, scheduleID: scheduleID})
	})
}

type pgCollaboratorTx struct {
	tx         *sqlx.Tx
	scheduleID int
}

func (c *pgCollaboratorTx) CollaboratorIDs(ctx context.Context) ([]int, error) {
	ids := []int{}
	err := c.tx.SelectContext(ctx, &ids,
		`SELECT user_id FROM schedule_users WHERE schedule_id = $1;`, c.scheduleID)
	return ids, err
}

func (c *pgCollaboratorTx) ExistingUserIDs(ctx context.Context, ids []int) ([]int, error) {
	found := []int{}
	if len(ids) == 0 {
		return found, nil
	}
	q, args, err := sqlx.In(`SELECT id FROM users WHERE id IN (?);`, ids)
	if err != nil {
		return nil, err
	}
	err = c.tx.SelectContext(ctx, &found, c.tx.Rebind(q), args...)
	return found, err
}

func (c *pgCollaboratorTx) AddCollaborators(ctx context.Context, ids []int) error {
	for _, uid := range ids {
		_, err := c.tx.ExecContext(ctx,
			`INSERT INTO schedule_users (schedule_id, user_id, created_at) VALUES ($1, $2, now());`,
			c.scheduleID, uid)
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		if err != nil {
			log.Error().Err(err).Int("schedule_id", c.scheduleID).Int("user_id", uid).Msg("AddCollaborators failed")
			return err
		}
	}
	return nil
}

func (c *pgCollaboratorTx) RemoveCollaborators(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(`DELETE FROM schedule_users WHERE schedule_id = ? AND user_id IN (?);`, c.scheduleID, ids)
	if err != nil {
		return 0, err
	}
	res, err := c.tx.ExecContext(ctx, c.tx.Rebind(q), args...)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", c.scheduleID).Msg("RemoveCollaborators failed")
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
