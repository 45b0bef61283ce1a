// exposes a Store interface that is passed to the api and schedule packages
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = sql.ErrNoRows
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

type Store interface {
	// user functions
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserProfile(ctx context.Context, id int, email, name string) error
	DeleteUser(ctx context.Context, id int) error

	// schedule functions
	CreateSchedule(ctx context.Context, s *model.Schedule) error
	GetSchedule(ctx context.Context, id int) (*model.Schedule, error)
	UpdateSchedule(ctx context.Context, s *model.Schedule) error
	DeleteSchedule(ctx context.Context, id int) error
	ListSchedules(ctx context.Context, q ScheduleQuery) ([]model.Schedule, error)

	// collaborator functions
	CollaboratorIDs(ctx context.Context, scheduleID int) ([]int, error)
	ListCollaborators(ctx context.Context, scheduleID int) ([]model.User, error)
	WithScheduleLock(ctx context.Context, scheduleID int, fn func(ctx context.Context, tx CollaboratorTx) error) error

	// comment functions
	CreateComment(ctx context.Context, c *model.Comment) error
	GetComment(ctx context.Context, id int) (*model.Comment, error)
	ListComments(ctx context.Context, scheduleID int) ([]model.Comment, error)
	UpdateComment(ctx context.Context, c *model.Comment) error
	DeleteComment(ctx context.Context, id int) error
}

// CollaboratorTx is the view of one locked schedule inside WithScheduleLock.
// Every read and write goes through the same transaction.
type CollaboratorTx interface {
	CollaboratorIDs(ctx context.Context) ([]int, error)
	ExistingUserIDs(ctx context.Context, ids []int) ([]int, error)
	AddCollaborators(ctx context.Context, ids []int) error
	RemoveCollaborators(ctx context.Context, ids []int) (int, error)
}

type pgStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

// NewStore wraps db. Every call is bounded by timeout.
func NewStore(db *sqlx.DB, timeout time.Duration) Store {
	return &pgStore{db: db, timeout: timeout}
}

// opCtx detaches the storage call from caller cancellation so a started
// transaction always commits or rolls back, and bounds it by the store timeout.
func (s *pgStore) opCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), s.timeout)
}

func (s *pgStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// a referenced user or schedule is gone
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
