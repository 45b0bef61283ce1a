package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

const commentSelect = `
	SELECT c.id, c.schedule_id, c.author_id, u.name AS author_name, c.content,
	       c.created_at, c.last_modified_at
	  FROM comments c
	  JOIN users u ON u.id = c.author_id`

func (s *pgStore) CreateComment(ctx context.Context, c *model.Comment) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `
	WITH ins AS (
	  INSERT INTO comments (schedule_id, author_id, content, created_at, last_modified_at)
	  VALUES ($1, $2, $3, now(), now())
	  RETURNING id, author_id, created_at, last_modified_at
	)
	SELECT ins.id, u.name, ins.created_at, ins.last_modified_at
	  FROM ins JOIN users u ON u.id = ins.author_id;`
	err := s.db.QueryRowxContext(ctx, q, c.ScheduleID, c.AuthorID, c.Content).
		Scan(&c.ID, &c.AuthorName, &c.CreatedAt, &c.LastModifiedAt)
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Int("schedule_id", c.ScheduleID).Msg("CreateComment failed")
		return err
	}
	return nil
}

func (s *pgStore) GetComment(ctx context.Context, id int) (*model.Comment, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var c model.Comment
	if err := s.db.GetContext(ctx, &c, commentSelect+` WHERE c.id = $1;`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int("comment_id", id).Msg("GetComment failed")
		return nil, err
	}
	return &c, nil
}

func (s *pgStore) ListComments(ctx context.Context, scheduleID int) ([]model.Comment, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	out := []model.Comment{}
	err := s.db.SelectContext(ctx, &out, commentSelect+` WHERE c.schedule_id = $1 ORDER BY c.created_at, c.id;`, scheduleID)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("ListComments failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateComment(ctx context.Context, c *model.Comment) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	err := s.db.QueryRowxContext(ctx,
		`UPDATE comments SET content = $2, last_modified_at = now() WHERE id = $1 RETURNING last_modified_at;`,
		c.ID, c.Content).Scan(&c.LastModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Int("comment_id", c.ID).Msg("UpdateComment failed")
	}
	return err
}

func (s *pgStore) DeleteComment(ctx context.Context, id int) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("comment_id", id).Msg("DeleteComment failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
