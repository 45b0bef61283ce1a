package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

// Lister is the storage capability the query engine needs.
type Lister interface {
	ListSchedules(ctx context.Context, q db.ScheduleQuery) ([]model.Schedule, error)
}

// Page is one slice of a listing. HasNextPage is derived by fetching one row
// more than Limit, so no count query is issued.
type Page struct {
	Items       []model.Schedule
	Page        int
	Limit       int
	HasNextPage bool
}

// Engine turns a Filter into a bounded, ordered storage query. Offsets grow
// linearly with the page number; deep pages pay a proportional scan.
type Engine struct {
	store Lister
	loc   *time.Location
	now   func() time.Time
}

func NewEngine(store Lister, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{store: store, loc: loc, now: time.Now}
}

// ListPublic lists public schedules, newest modification first.
func (e *Engine) ListPublic(ctx context.Context, f Filter) (Page, error) {
	return e.list(ctx, db.ScheduleQuery{PublicOnly: true, AuthorName: f.AuthorName}, f)
}

// ListForOwner lists every schedule owned by ownerID. The author filter does
// not apply.
func (e *Engine) ListForOwner(ctx context.Context, ownerID int, f Filter) (Page, error) {
	return e.list(ctx, db.ScheduleQuery{OwnerID: ownerID}, f)
}

func (e *Engine) list(ctx context.Context, q db.ScheduleQuery, f Filter) (Page, error) {
	if !pageInRange(f.Page, f.Limit) {
		return Page{}, apperr.Validation("invalid pagination", nil)
	}
	window := f.Window
	if window == nil {
		window = AnyTime{}
	}
	q.ModifiedFrom, q.ModifiedTo = window.Bounds(e.now(), e.loc)
	q.Limit = f.Limit + 1
	q.Offset = f.Page * f.Limit

	rows, err := e.store.ListSchedules(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("list schedules: %w", err)
	}

	p := Page{Items: rows, Page: f.Page, Limit: f.Limit}
	if len(rows) > f.Limit {
		p.HasNextPage = true
		p.Items = rows[:f.Limit]
	}
	return p, nil
}
