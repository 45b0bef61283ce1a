package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

// MaxCollaborators is the number of users that may be assigned to one schedule.
const MaxCollaborators = 5

type collaboratorStore interface {
	ListCollaborators(ctx context.Context, scheduleID int) ([]model.User, error)
	WithScheduleLock(ctx context.Context, scheduleID int, fn func(ctx context.Context, tx db.CollaboratorTx) error) error
}

// Limiter assigns and removes collaborators. The count check and the write
// share one locked unit of work, so concurrent assignments cannot overshoot
// MaxCollaborators.
type Limiter struct {
	store collaboratorStore
}

func NewLimiter(store collaboratorStore) *Limiter {
	return &Limiter{store: store}
}

// Assign adds every id in userIDs or none of them.
func (l *Limiter) Assign(ctx context.Context, scheduleID int, userIDs []int) ([]model.User, error) {
	if err := checkIDs(userIDs); err != nil {
		return nil, err
	}

	err := l.store.WithScheduleLock(ctx, scheduleID, func(ctx context.Context, tx db.CollaboratorTx) error {
		current, err := tx.CollaboratorIDs(ctx)
		if err != nil {
			return err
		}
		if len(current)+len(userIDs) > MaxCollaborators {
			return apperr.Capacity(fmt.Sprintf("a schedule can have at most %d collaborators", MaxCollaborators))
		}

		assigned := toSet(current)
		for _, id := range userIDs {
			if _, ok := assigned[id]; ok {
				return apperr.Conflict(fmt.Sprintf("user %d is already assigned", id))
			}
		}

		existing, err := tx.ExistingUserIDs(ctx, userIDs)
		if err != nil {
			return err
		}
		found := toSet(existing)
		for _, id := range userIDs {
			if _, ok := found[id]; !ok {
				return apperr.NotFound(fmt.Sprintf("user %d not found", id))
			}
		}

		if err := tx.AddCollaborators(ctx, userIDs); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return apperr.Conflict("user is already assigned")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, lockErr(scheduleID, err)
	}

	log.Info().Int("schedule_id", scheduleID).Ints("user_ids", userIDs).Msg("collaborators assigned")

	all, err := l.store.ListCollaborators(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	wanted := toSet(userIDs)
	out := make([]model.User, 0, len(userIDs))
	for _, u := range all {
		if _, ok := wanted[u.ID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// Unassign removes exactly the requested edges. Every id must currently be assigned.
func (l *Limiter) Unassign(ctx context.Context, scheduleID int, userIDs []int) (int, error) {
	if err := checkIDs(userIDs); err != nil {
		return 0, err
	}

	var removed int
	err := l.store.WithScheduleLock(ctx, scheduleID, func(ctx context.Context, tx db.CollaboratorTx) error {
		current, err := tx.CollaboratorIDs(ctx)
		if err != nil {
			return err
		}
		assigned := toSet(current)
		for _, id := range userIDs {
			if _, ok := assigned[id]; !ok {
				return apperr.Validation(fmt.Sprintf("user %d is not assigned to this schedule", id),
					map[string]string{"userIds": "contains a user that is not assigned"})
			}
		}
		removed, err = tx.RemoveCollaborators(ctx, userIDs)
		return err
	})
	if err != nil {
		return 0, lockErr(scheduleID, err)
	}

	log.Info().Int("schedule_id", scheduleID).Int("removed", removed).Msg("collaborators removed")
	return removed, nil
}

func checkIDs(ids []int) error {
	if len(ids) == 0 {
		return apperr.Validation("invalid request", map[string]string{"userIds": "must not be empty"})
	}
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return apperr.Validation("invalid request", map[string]string{"userIds": "must contain positive ids"})
		}
		if _, dup := seen[id]; dup {
			return apperr.Validation("invalid request", map[string]string{"userIds": "must not contain duplicates"})
		}
		seen[id] = struct{}{}
	}
	return nil
}

func lockErr(scheduleID int, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("schedule not found")
	}
	return fmt.Errorf("collaborators of schedule %d: %w", scheduleID, err)
}

func toSet(ids []int) map[int]struct{} {
	m := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
