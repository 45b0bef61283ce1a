package schedule

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

func seedUsers(t *testing.T, fx *fixture, n int) []int {
	t.Helper()
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		u := fx.user(t, "user"+string(rune('a'+i)))
		out = append(out, u.ID)
	}
	return out
}

func TestAssignThenOverCapacity(t *testing.T) {
	fx := newFixture()
	owner := fx.user(t, "Owner")
	s := fx.schedule(t, owner, true, base)
	users := seedUsers(t, fx, 6)
	l := NewLimiter(fx.store)
	ctx := context.Background()

	assigned, err := l.Assign(ctx, s.ID, users[:3])
	require.NoError(t, err)
	assert.Len(t, assigned, 3)

	_, err = l.Assign(ctx, s.ID, users[3:6])
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.CapacityExceeded, ae.Kind)
	assert.Equal(t, 400, ae.Status())

	ids, err := fx.store.CollaboratorIDs(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, users[:3], ids)
}

func TestAssignFillsToExactlyFive(t *testing.T) {
	fx := newFixture()
	owner := fx.user(t, "Owner")
	s := fx.schedule(t, owner, true, base)
	users := seedUsers(t, fx, 5)
	l := NewLimiter(fx.store)

	_, err := l.Assign(context.Background(), s.ID, users)
	require.NoError(t, err)
}

func TestAssignRejections(t *testing.T) {
	fx := newFixture()
	owner := fx.user(t, "Owner")
	s := fx.schedule(t, owner, true, base)
	users := seedUsers(t, fx, 3)
	l := NewLimiter(fx.store)
	ctx := context.Background()

	_, err := l.Assign(ctx, s.ID, users[:1])
	require.NoError(t, err)

	tests := []struct {
		name       string
		scheduleID int
		ids        []int
		kind       apperr.Kind
	}{
		{"empty", s.ID, nil, apperr.ValidationFailed},
		{"duplicate in request", s.ID, []int{users[1], users[1]}, apperr.ValidationFailed},
		{"already assigned", s.ID, []int{users[1], users[0]}, apperr.ConflictState},
		{"unknown user", s.ID, []int{users[1], 999}, apperr.EntityNotFound},
		{"unknown schedule", 999, []int{users[1]}, apperr.EntityNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Assign(ctx, tt.scheduleID, tt.ids)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.From(err).Kind)
		})
	}

	// none of the rejected calls wrote anything
	ids, err := fx.store.CollaboratorIDs(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, users[:1], ids)
}

func TestConcurrentAssignNeverExceedsLimit(t *testing.T) {
	fx := newFixture()
	owner := fx.user(t, "Owner")
	s := fx.schedule(t, owner, true, base)
	users := seedUsers(t, fx, 12)
	l := NewLimiter(fx.store)

	var wg sync.WaitGroup
	results := make(chan error, len(users)/2)
	for i := 0; i < len(users); i += 2 {
		wg.Add(1)
		go func(pair []int) {
			defer wg.Done()
			_, err := l.Assign(context.Background(), s.ID, pair)
			results <- err
		}(users[i : i+2])
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperr.CapacityExceeded, apperr.From(err).Kind)
	}
	assert.Equal(t, 2, succeeded)

	ids, err := fx.store.CollaboratorIDs(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 4)
}

func TestUnassign(t *testing.T) {
	fx := newFixture()
	owner := fx.user(t, "Owner")
	s := fx.schedule(t, owner, true, base)
	users := seedUsers(t, fx, 3)
	l := NewLimiter(fx.store)
	ctx := context.Background()

	_, err := l.Assign(ctx, s.ID, users[:2])
	require.NoError(t, err)

	_, err = l.Unassign(ctx, s.ID, []int{users[0], users[2]})
	assert.True(t, apperr.Is(err, apperr.ValidationFailed))

	n, err := l.Unassign(ctx, s.ID, []int{users[0]})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := fx.store.ListCollaborators(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, users[1], got[0].ID)

	_, err = l.Unassign(ctx, 999, []int{users[1]})
	assert.True(t, apperr.Is(err, apperr.EntityNotFound))
}

func TestAssignReturnsUsers(t *testing.T) {
	fx := newFixture()
	owner := fx.user(t, "Owner")
	s := fx.schedule(t, owner, true, base)
	users := seedUsers(t, fx, 2)
	l := NewLimiter(fx.store)

	got, err := l.Assign(context.Background(), s.ID, users)
	require.NoError(t, err)
	names := []string{}
	for _, u := range got {
		names = append(names, u.Name)
	}
	assert.ElementsMatch(t, []string{"usera", "userb"}, names)
	assert.IsType(t, model.User{}, got[0])
}
