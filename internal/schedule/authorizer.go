package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

type Action int

const (
	View Action = iota
	Modify
	Delete
	CommentCreate
	CommentModify
	CommentDelete
)

func (a Action) String() string {
	switch a {
	case View:
		return "view"
	case Modify:
		return "modify"
	case Delete:
		return "delete"
	case CommentCreate:
		return "comment.create"
	case CommentModify:
		return "comment.modify"
	case CommentDelete:
		return "comment.delete"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

const (
	ReasonForbiddenAccess = "forbidden_schedule_access"
	ReasonUnauthorized    = "unauthorized"
	ReasonAuthRequired    = "authentication required"
)

// ScheduleAccess is what a decision about a schedule is made on.
type ScheduleAccess struct {
	Schedule      model.Schedule
	Collaborators []int
}

func (a ScheduleAccess) isCollaborator(userID int) bool {
	for _, id := range a.Collaborators {
		if id == userID {
			return true
		}
	}
	return false
}

type Decision struct {
	Allowed bool
	Reason  string
	Kind    apperr.Kind
}

var allow = Decision{Allowed: true}

// Err returns nil for an allowed decision and the classified error otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.New(d.Kind, d.Reason)
}

func deny(actor *auth.Identity, reason string) Decision {
	if actor == nil {
		return Decision{Reason: ReasonAuthRequired, Kind: apperr.AuthenticationMissing}
	}
	return Decision{Reason: reason, Kind: apperr.AuthorizationDenied}
}

// Decide applies the visibility and ownership rules. A nil actor is anonymous.
func Decide(actor *auth.Identity, a ScheduleAccess, action Action) Decision {
	s := a.Schedule
	switch action {
	case View, CommentCreate:
		if action == View && s.IsPublic {
			return allow
		}
		if actor == nil {
			return deny(nil, ReasonForbiddenAccess)
		}
		if s.IsPublic || actor.IsAdmin() || actor.UserID == s.OwnerID || a.isCollaborator(actor.UserID) {
			return allow
		}
		return deny(actor, ReasonForbiddenAccess)
	case Modify, Delete:
		if actor != nil && (actor.IsAdmin() || actor.UserID == s.OwnerID) {
			return allow
		}
		return deny(actor, ReasonUnauthorized)
	}
	return deny(actor, ReasonUnauthorized)
}

// DecideComment covers edits and deletes of a comment. The parent schedule's
// owner has no say.
func DecideComment(actor *auth.Identity, c model.Comment, action Action) Decision {
	if action != CommentModify && action != CommentDelete {
		return deny(actor, ReasonUnauthorized)
	}
	if actor != nil && (actor.IsAdmin() || actor.UserID == c.AuthorID) {
		return allow
	}
	return deny(actor, ReasonUnauthorized)
}

// Authorizer loads the target of a request and applies Decide. Missing targets
// are reported as not found before any permission check.
type Authorizer struct {
	store db.Store
}

func NewAuthorizer(store db.Store) *Authorizer {
	return &Authorizer{store: store}
}

// Schedule returns the schedule and its collaborator ids when actor may perform
// action on it.
func (z *Authorizer) Schedule(ctx context.Context, actor *auth.Identity, id int, action Action) (ScheduleAccess, error) {
	s, err := z.store.GetSchedule(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return ScheduleAccess{}, apperr.NotFound("schedule not found")
	}
	if err != nil {
		return ScheduleAccess{}, fmt.Errorf("get schedule %d: %w", id, err)
	}

	collaborators, err := z.store.CollaboratorIDs(ctx, id)
	if err != nil {
		return ScheduleAccess{}, fmt.Errorf("collaborators of schedule %d: %w", id, err)
	}

	a := ScheduleAccess{Schedule: *s, Collaborators: collaborators}
	if err := Decide(actor, a, action).Err(); err != nil {
		return ScheduleAccess{}, err
	}
	return a, nil
}

// Comment returns the comment when actor may perform action on it.
func (z *Authorizer) Comment(ctx context.Context, actor *auth.Identity, id int, action Action) (*model.Comment, error) {
	c, err := z.store.GetComment(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("comment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get comment %d: %w", id, err)
	}
	if err := DecideComment(actor, *c, action).Err(); err != nil {
		return nil, err
	}
	return c, nil
}
