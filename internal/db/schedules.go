package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

func (s *pgStore) CreateSchedule(ctx context.Context, sc *model.Schedule) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `
	WITH ins AS (
	  INSERT INTO schedules (owner_id, content, start_at, end_at, is_public, created_at, last_modified_at)
	  VALUES ($1, $2, $3, $4, $5, now(), now())
	  RETURNING id, owner_id, created_at, last_modified_at
	)
	SELECT ins.id, u.name, ins.created_at, ins.last_modified_at
	  FROM ins JOIN users u ON u.id = ins.owner_id;`
	err := s.db.QueryRowxContext(ctx, q, sc.OwnerID, sc.Content, sc.StartAt, sc.EndAt, sc.IsPublic).
		Scan(&sc.ID, &sc.AuthorName, &sc.CreatedAt, &sc.LastModifiedAt)
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Int("owner_id", sc.OwnerID).Msg("CreateSchedule failed")
		return err
	}
	return nil
}

func (s *pgStore) GetSchedule(ctx context.Context, id int) (*model.Schedule, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var sc model.Schedule
	err := s.db.GetContext(ctx, &sc, scheduleSelect+` WHERE s.id = $1;`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int("schedule_id", id).Msg("GetSchedule failed")
		return nil, err
	}
	return &sc, nil
}

// UpdateSchedule overwrites the mutable fields of sc and refreshes LastModifiedAt.
func (s *pgStore) UpdateSchedule(ctx context.Context, sc *model.Schedule) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		const q = `
		UPDATE schedules
		   SET content = $2, start_at = $3, end_at = $4, is_public = $5, last_modified_at = now()
		 WHERE id = $1
		RETURNING last_modified_at;`
		return tx.QueryRowxContext(ctx, q, sc.ID, sc.Content, sc.StartAt, sc.EndAt, sc.IsPublic).
			Scan(&sc.LastModifiedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Int("schedule_id", sc.ID).Msg("UpdateSchedule failed")
	}
	return err
}

// DeleteSchedule removes the schedule's comments, its collaborator edges and
// then the schedule, in one transaction.
func (s *pgStore) DeleteSchedule(ctx context.Context, id int) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE schedule_id = $1;`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_users WHERE schedule_id = $1;`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1;`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Error().Err(err).Int("schedule_id", id).Msg("DeleteSchedule failed")
	}
	return err
}

func (s *pgStore) ListSchedules(ctx context.Context, q ScheduleQuery) ([]model.Schedule, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	stmt, args := q.SQL()
	out := []model.Schedule{}
	if err := s.db.SelectContext(ctx, &out, stmt, args...); err != nil {
		log.Error().Err(err).Msg("ListSchedules failed")
		return nil, err
	}
	return out, nil
}
