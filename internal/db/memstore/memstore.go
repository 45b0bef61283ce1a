// Package memstore is an in-process db.Store. It backs STORE_DRIVER=memory and
// the HTTP and domain tests. Writes are applied under a single lock, so every
// operation is atomic and WithScheduleLock is serializable.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

type edge struct{ scheduleID, userID int }

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	nextUser, nextSchedule, nextComment int

	users     map[int]model.User
	schedules map[int]model.Schedule
	comments  map[int]model.Comment
	edges     map[edge]struct{}
}

var _ db.Store = (*Store)(nil)

type Option func(*Store)

// WithClock overrides the timestamp source used for created/modified times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		users:     make(map[int]model.User),
		schedules: make(map[int]model.Schedule),
		comments:  make(map[int]model.Comment),
		edges:     make(map[edge]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetClock replaces the timestamp source after construction.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// ---- users ----

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.users {
		if other.Email == u.Email {
			return db.ErrDuplicate
		}
	}
	s.nextUser++
	now := s.now()
	u.ID, u.CreatedAt, u.UpdatedAt = s.nextUser, now, now
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id int) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateUserProfile(_ context.Context, id int, email, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return db.ErrNotFound
	}
	for _, other := range s.users {
		if other.ID != id && other.Email == email {
			return db.ErrDuplicate
		}
	}
	u.Email, u.Name, u.UpdatedAt = email, name, s.now()
	s.users[id] = u
	for sid, sc := range s.schedules {
		if sc.OwnerID == id {
			sc.AuthorName = name
			s.schedules[sid] = sc
		}
	}
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return db.ErrNotFound
	}
	for sid, sc := range s.schedules {
		if sc.OwnerID == id {
			s.deleteScheduleLocked(sid)
		}
	}
	for cid, c := range s.comments {
		if c.AuthorID == id {
			delete(s.comments, cid)
		}
	}
	for e := range s.edges {
		if e.userID == id {
			delete(s.edges, e)
		}
	}
	delete(s.users, id)
	return nil
}

// ---- schedules ----

func (s *Store) CreateSchedule(_ context.Context, sc *model.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.users[sc.OwnerID]
	if !ok {
		return db.ErrNotFound
	}
	s.nextSchedule++
	now := s.now()
	sc.ID, sc.AuthorName, sc.CreatedAt, sc.LastModifiedAt = s.nextSchedule, owner.Name, now, now
	s.schedules[sc.ID] = *sc
	return nil
}

func (s *Store) GetSchedule(_ context.Context, id int) (*model.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.schedules[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &sc, nil
}

func (s *Store) UpdateSchedule(_ context.Context, sc *model.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.schedules[sc.ID]
	if !ok {
		return db.ErrNotFound
	}
	cur.Content, cur.StartAt, cur.EndAt, cur.IsPublic = sc.Content, sc.StartAt, sc.EndAt, sc.IsPublic
	cur.LastModifiedAt = s.now()
	s.schedules[sc.ID] = cur
	sc.LastModifiedAt = cur.LastModifiedAt
	return nil
}

func (s *Store) DeleteSchedule(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[id]; !ok {
		return db.ErrNotFound
	}
	s.deleteScheduleLocked(id)
	return nil
}

func (s *Store) deleteScheduleLocked(id int) {
	for cid, c := range s.comments {
		if c.ScheduleID == id {
			delete(s.comments, cid)
		}
	}
	for e := range s.edges {
		if e.scheduleID == id {
			delete(s.edges, e)
		}
	}
	delete(s.schedules, id)
}

func (s *Store) ListSchedules(_ context.Context, q db.ScheduleQuery) ([]model.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]model.Schedule, 0)
	for _, sc := range s.schedules {
		if q.Matches(sc) {
			matched = append(matched, sc)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return db.Less(matched[i], matched[j]) })

	if q.Offset < 0 || q.Offset >= len(matched) {
		return []model.Schedule{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// ---- collaborators ----

func (s *Store) CollaboratorIDs(_ context.Context, scheduleID int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collaboratorIDsLocked(scheduleID), nil
}

func (s *Store) collaboratorIDsLocked(scheduleID int) []int {
	ids := []int{}
	for e := range s.edges {
		if e.scheduleID == scheduleID {
			ids = append(ids, e.userID)
		}
	}
	sort.Ints(ids)
	return ids
}

func (s *Store) ListCollaborators(_ context.Context, scheduleID int) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.User{}
	for _, id := range s.collaboratorIDsLocked(scheduleID) {
		out = append(out, s.users[id])
	}
	return out, nil
}

// WithScheduleLock holds the store lock for the whole of fn. Writes made
// through tx are staged and only applied when fn returns nil.
func (s *Store) WithScheduleLock(ctx context.Context, scheduleID int, fn func(ctx context.Context, tx db.CollaboratorTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[scheduleID]; !ok {
		return db.ErrNotFound
	}
	tx := &memTx{s: s, scheduleID: scheduleID}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, uid := range tx.removed {
		delete(s.edges, edge{scheduleID, uid})
	}
	for _, uid := range tx.added {
		s.edges[edge{scheduleID, uid}] = struct{}{}
	}
	return nil
}

type memTx struct {
	s          *Store
	scheduleID int
	added      []int
	removed    []int
}

func (t *memTx) CollaboratorIDs(context.Context) ([]int, error) {
	return t.s.collaboratorIDsLocked(t.scheduleID), nil
}

func (t *memTx) ExistingUserIDs(_ context.Context, ids []int) ([]int, error) {
	found := []int{}
	for _, id := range ids {
		if _, ok := t.s.users[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func (t *memTx) AddCollaborators(_ context.Context, ids []int) error {
	for _, id := range ids {
		if _, ok := t.s.edges[edge{t.scheduleID, id}]; ok {
			return db.ErrDuplicate
		}
	}
	t.added = append(t.added, ids...)
	return nil
}

func (t *memTx) RemoveCollaborators(_ context.Context, ids []int) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := t.s.edges[edge{t.scheduleID, id}]; ok {
			n++
			t.removed = append(t.removed, id)
		}
	}
	return n, nil
}

// ---- comments ----

func (s *Store) CreateComment(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[c.ScheduleID]; !ok {
		return db.ErrNotFound
	}
	author, ok := s.users[c.AuthorID]
	if !ok {
		return db.ErrNotFound
	}
	s.nextComment++
	now := s.now()
	c.ID, c.AuthorName, c.CreatedAt, c.LastModifiedAt = s.nextComment, author.Name, now, now
	s.comments[c.ID] = *c
	return nil
}

func (s *Store) GetComment(_ context.Context, id int) (*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListComments(_ context.Context, scheduleID int) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Comment{}
	for _, c := range s.comments {
		if c.ScheduleID == scheduleID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateComment(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.comments[c.ID]
	if !ok {
		return db.ErrNotFound
	}
	cur.Content, cur.LastModifiedAt = c.Content, s.now()
	s.comments[c.ID] = cur
	c.LastModifiedAt = cur.LastModifiedAt
	return nil
}

func (s *Store) DeleteComment(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}
