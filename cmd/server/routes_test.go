package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/db"
	"github.com/Nixie-Tech-LLC/memo/internal/db/memstore"
	"github.com/Nixie-Tech-LLC/memo/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
	"github.com/Nixie-Tech-LLC/memo/internal/notify"
	"github.com/Nixie-Tech-LLC/memo/internal/redis"
	"github.com/Nixie-Tech-LLC/memo/internal/schedule"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Status      int               `json:"status"`
		Message     string            `json:"message"`
		FieldErrors map[string]string `json:"fieldErrors"`
	} `json:"error"`
	Timestamp string `json:"timestamp"`
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	store    *memstore.Store
	codec    *auth.TokenCodec
	notifier *notify.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	ts := &testServer{
		t:        t,
		router:   gin.New(),
		store:    store,
		codec:    auth.NewTokenCodec("test-secret"),
		notifier: &notify.Recorder{},
	}
	RegisterRoutes(ts.router, Dependencies{
		Codec:       ts.codec,
		Store:       store,
		Engine:      schedule.NewEngine(store, time.Local),
		Notifier:    ts.notifier,
		Throttle:    redis.NewLoginThrottle(nil),
		AuthLimiter: middleware.NewRateLimiter(1000, 1000),
	})
	return ts
}

func (ts *testServer) user(name string, role model.Role) (model.User, string) {
	ts.t.Helper()
	hashed, err := auth.HashPassword("password123")
	require.NoError(ts.t, err)
	u := model.User{Email: name + "@example.com", Name: name, HashedPassword: hashed, Role: role}
	require.NoError(ts.t, ts.store.CreateUser(context.Background(), &u))
	token, err := ts.codec.Issue(auth.Identity{UserID: u.ID, Role: role})
	require.NoError(ts.t, err)
	return u, token
}

func (ts *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

type scheduleBody struct {
	ID             int    `json:"id"`
	OwnerID        int    `json:"ownerId"`
	AuthorName     string `json:"authorName"`
	Content        string `json:"content"`
	StartAt        string `json:"startAt"`
	EndAt          string `json:"endAt"`
	IsPublic       bool   `json:"isPublic"`
	LastModifiedAt string `json:"lastModifiedAt"`
	Collaborators  []struct {
		ID int `json:"id"`
	} `json:"collaborators"`
}

type pageBody struct {
	Items       []scheduleBody `json:"items"`
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
	HasNextPage bool           `json:"hasNextPage"`
}

const createBody = `{"content":"Test","startAt":"2025-01-01 09:00","endAt":"2025-01-01 10:00","isPublic":true}`

func (ts *testServer) createSchedule(token string, public bool) scheduleBody {
	ts.t.Helper()
	w, env := ts.do(http.MethodPost, "/schedules/s", token, map[string]any{
		"content":  "memo",
		"startAt":  "2025-01-01 09:00",
		"endAt":    "2025-01-01 10:00",
		"isPublic": public,
	})
	require.Equal(ts.t, http.StatusCreated, w.Code, w.Body.String())
	var s scheduleBody
	require.NoError(ts.t, json.Unmarshal(env.Data, &s))
	return s
}

func TestJoinAndLogin(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(http.MethodPost, "/users/join", "", map[string]string{
		"email": "New@Example.com", "password": "password123", "name": "Newbie",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)

	w, env = ts.do(http.MethodPost, "/users/join", "", map[string]string{
		"email": "new@example.com", "password": "password123", "name": "Again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)

	w, env = ts.do(http.MethodPost, "/users/login", "", map[string]string{
		"email": "new@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "Bearer "+login.Token, w.Header().Get("Authorization"))

	w, _ = ts.do(http.MethodGet, "/users/me", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = ts.do(http.MethodPost, "/users/login", "", map[string]string{
		"email": "new@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 401, env.Error.Status)
}

func TestJoinValidation(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(http.MethodPost, "/users/join", "", map[string]string{
		"email": "not-an-email", "password": "short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.FieldErrors, "email")
	assert.Contains(t, env.Error.FieldErrors, "password")
	assert.Contains(t, env.Error.FieldErrors, "name")
}

func TestGateRejections(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(http.MethodGet, "/schedules/s", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication required", env.Error.Message)
	assert.NotEmpty(t, env.Timestamp)

	w, _ = ts.do(http.MethodGet, "/schedules/s", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other := auth.NewTokenCodec("other-secret")
	forged, err := other.Issue(auth.Identity{UserID: 1, Role: model.RoleUser})
	require.NoError(t, err)
	w, _ = ts.do(http.MethodGet, "/schedules/s", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, userToken := ts.user("alice", model.RoleUser)
	w, _ = ts.do(http.MethodGet, "/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, adminToken := ts.user("root", model.RoleAdmin)
	w, env = ts.do(http.MethodGet, "/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 2)
}

func TestCreateScheduleExample(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user("alice", model.RoleUser)

	w, env := ts.do(http.MethodPost, "/schedules/s", token, createBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)

	var s scheduleBody
	require.NoError(t, json.Unmarshal(env.Data, &s))
	assert.NotZero(t, s.ID)
	assert.True(t, s.IsPublic)
	assert.Equal(t, "2025-01-01 09:00", s.StartAt)
	assert.Equal(t, "alice", s.AuthorName)
}

func TestCreateScheduleValidation(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user("alice", model.RoleUser)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing content", `{"startAt":"2025-01-01 09:00","endAt":"2025-01-01 10:00","isPublic":true}`, "content"},
		{"missing visibility", `{"content":"x","startAt":"2025-01-01 09:00","endAt":"2025-01-01 10:00"}`, "isPublic"},
		{"end before start", `{"content":"x","startAt":"2025-01-01 11:00","endAt":"2025-01-01 10:00","isPublic":true}`, "endAt"},
		{"blank content", `{"content":"   ","startAt":"2025-01-01 09:00","endAt":"2025-01-01 10:00","isPublic":true}`, "content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := ts.do(http.MethodPost, "/schedules/s", token, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, env.Error.FieldErrors, tt.field)
		})
	}

	w, _ := ts.do(http.MethodPost, "/schedules/s", token, `{"content":"x","startAt":"01/01/2025","endAt":"2025-01-01 10:00","isPublic":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicListingModifiedWithinDay(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user("alice", model.RoleUser)

	ts.store.SetClock(func() time.Time { return time.Now().Add(-48 * time.Hour) })
	stale := ts.createSchedule(token, true)
	ts.store.SetClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	older := ts.createSchedule(token, true)
	ts.store.SetClock(time.Now)
	newer := ts.createSchedule(token, true)
	ts.createSchedule(token, false)

	w, env := ts.do(http.MethodGet, "/schedules?modifiedAt=1d", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page pageBody
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, newer.ID, page.Items[0].ID)
	assert.Equal(t, older.ID, page.Items[1].ID)
	assert.False(t, page.HasNextPage)
	for _, it := range page.Items {
		assert.NotEqual(t, stale.ID, it.ID)
	}

	w, env = ts.do(http.MethodGet, "/schedules?limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, 1, page.Limit)

	w, env = ts.do(http.MethodGet, "/schedules?limit=0", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.FieldErrors, "limit")

	w, env = ts.do(http.MethodGet, "/schedules?authorName=ali&modifiedAt=bogus", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 3)
}

func TestOwnerListingIncludesPrivate(t *testing.T) {
	ts := newTestServer(t)
	_, alice := ts.user("alice", model.RoleUser)
	_, bob := ts.user("bob", model.RoleUser)
	ts.createSchedule(alice, false)
	ts.createSchedule(alice, true)
	ts.createSchedule(bob, true)

	w, env := ts.do(http.MethodGet, "/schedules/s", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page pageBody
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 2)
}

func TestPrivateScheduleVisibility(t *testing.T) {
	ts := newTestServer(t)
	_, owner := ts.user("owner", model.RoleUser)
	_, stranger := ts.user("stranger", model.RoleUser)
	_, admin := ts.user("root", model.RoleAdmin)
	s := ts.createSchedule(owner, false)
	path := "/schedules/" + strconv.Itoa(s.ID)

	w, env := ts.do(http.MethodGet, path, stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, []string{"", "null"}, string(env.Data))
	assert.Equal(t, schedule.ReasonForbiddenAccess, env.Error.Message)

	w, _ = ts.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = ts.do(http.MethodGet, "/schedules/9999", stranger, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(http.MethodGet, path, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = ts.do(http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestModifyAndDeleteOwnership(t *testing.T) {
	ts := newTestServer(t)
	_, owner := ts.user("owner", model.RoleUser)
	_, stranger := ts.user("stranger", model.RoleUser)
	_, admin := ts.user("root", model.RoleAdmin)
	s := ts.createSchedule(owner, true)
	path := "/schedules/s/" + strconv.Itoa(s.ID)

	w, _ := ts.do(http.MethodPatch, path, stranger, map[string]any{"content": "hacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := ts.do(http.MethodPatch, path, owner, map[string]any{"content": "edited", "isPublic": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got scheduleBody
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "edited", got.Content)
	assert.False(t, got.IsPublic)
	assert.Equal(t, "2025-01-01 09:00", got.StartAt)

	w, _ = ts.do(http.MethodPatch, path, owner, map[string]any{"endAt": "2024-12-31 10:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(http.MethodDelete, path, stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = ts.do(http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(http.MethodGet, "/schedules/"+strconv.Itoa(s.ID), owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCollaboratorCapacityExample(t *testing.T) {
	ts := newTestServer(t)
	_, owner := ts.user("owner", model.RoleUser)
	ids := make([]int, 0, 6)
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		u, _ := ts.user(name, model.RoleUser)
		ids = append(ids, u.ID)
	}
	s := ts.createSchedule(owner, false)
	path := "/schedules/s/" + strconv.Itoa(s.ID) + "/collaborators"

	w, _ := ts.do(http.MethodPost, path, owner, map[string]any{"userIds": ids[:3]})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := ts.do(http.MethodPost, path, owner, map[string]any{"userIds": ids[3:]})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 400, env.Error.Status)

	current, err := ts.store.CollaboratorIDs(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, ids[:3], current)

	w, _ = ts.do(http.MethodPost, path, owner, map[string]any{"userIds": ids[:1]})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = ts.do(http.MethodPost, path, owner, map[string]any{"userIds": []int{9999}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []string{
		notify.AssignedTopic(ids[0]),
		notify.AssignedTopic(ids[1]),
		notify.AssignedTopic(ids[2]),
	}, ts.notifier.Topics())

	// collaborators can now see the private schedule but not manage it
	collab := ts.tokenFor(ids[0], model.RoleUser)
	w, env = ts.do(http.MethodGet, "/schedules/"+strconv.Itoa(s.ID), collab, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got scheduleBody
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Len(t, got.Collaborators, 3)

	w, _ = ts.do(http.MethodPost, path, collab, map[string]any{"userIds": ids[5:]})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = ts.do(http.MethodDelete, path, owner, map[string]any{"userIds": []int{ids[0], ids[5]}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = ts.do(http.MethodDelete, path, owner, map[string]any{"userIds": []int{ids[0]}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var removed struct {
		Removed int `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &removed))
	assert.Equal(t, 1, removed.Removed)
}

func (ts *testServer) tokenFor(userID int, role model.Role) string {
	ts.t.Helper()
	token, err := ts.codec.Issue(auth.Identity{UserID: userID, Role: role})
	require.NoError(ts.t, err)
	return token
}

func TestComments(t *testing.T) {
	ts := newTestServer(t)
	owner, ownerToken := ts.user("owner", model.RoleUser)
	writer, writerToken := ts.user("writer", model.RoleUser)
	_, strangerToken := ts.user("stranger", model.RoleUser)
	s := ts.createSchedule(ownerToken, false)

	require.NoError(t, ts.store.WithScheduleLock(context.Background(), s.ID, func(ctx context.Context, tx db.CollaboratorTx) error {
		return tx.AddCollaborators(ctx, []int{writer.ID})
	}))

	commentsPath := "/schedules/s/" + strconv.Itoa(s.ID) + "/comments"
	w, _ := ts.do(http.MethodPost, commentsPath, strangerToken, map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := ts.do(http.MethodPost, commentsPath, writerToken, map[string]string{"content": "hi"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c struct {
		ID       int `json:"id"`
		AuthorID int `json:"authorId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, writer.ID, c.AuthorID)
	assert.Equal(t, []string{notify.CommentsTopic(s.ID)}, ts.notifier.Topics())

	w, env = ts.do(http.MethodGet, "/schedules/"+strconv.Itoa(s.ID)+"/comments", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	commentPath := "/comments/" + strconv.Itoa(c.ID)
	w, _ = ts.do(http.MethodPatch, commentPath, ownerToken, map[string]string{"content": "owner edit"})
	assert.Equal(t, http.StatusForbidden, w.Code, "schedule owner %d cannot edit", owner.ID)

	w, _ = ts.do(http.MethodPatch, commentPath, writerToken, map[string]string{"content": "edited"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(http.MethodDelete, commentPath, writerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(http.MethodDelete, commentPath, writerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOwnAccount(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user("alice", model.RoleUser)
	s := ts.createSchedule(token, true)

	w, _ := ts.do(http.MethodDelete, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(http.MethodGet, "/schedules/"+strconv.Itoa(s.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthRateLimit(t *testing.T) {
	store := memstore.New()
	r := gin.New()
	RegisterRoutes(r, Dependencies{
		Codec:       auth.NewTokenCodec("secret"),
		Store:       store,
		Engine:      schedule.NewEngine(store, time.Local),
		Notifier:    notify.Nop{},
		Throttle:    redis.NewLoginThrottle(nil),
		AuthLimiter: middleware.NewRateLimiter(0.001, 1),
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusBadRequest, send())
	assert.Equal(t, http.StatusTooManyRequests, send())

	// other routes are not limited
	req := httptest.NewRequest(http.MethodGet, "/schedules", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	require.NoError(t, EnsureAdmin(ctx, store, "Root@Example.com", "password123"))
	require.NoError(t, EnsureAdmin(ctx, store, "root@example.com", "password123"))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, model.RoleAdmin, users[0].Role)
	assert.True(t, auth.CheckPassword(users[0].HashedPassword, "password123"))
}

type countingThrottle struct {
	max   int
	fails map[string]int
}

func (c *countingThrottle) Blocked(_ context.Context, email string) (bool, error) {
	return c.fails[email] >= c.max, nil
}

func (c *countingThrottle) Failed(_ context.Context, email string) { c.fails[email]++ }

func (c *countingThrottle) Reset(_ context.Context, email string) { delete(c.fails, email) }

func TestLoginThrottle(t *testing.T) {
	store := memstore.New()
	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(context.Background(), &model.User{
		Email: "ann@example.com", Name: "Ann", HashedPassword: hashed, Role: model.RoleUser,
	}))

	throttle := &countingThrottle{max: 2, fails: map[string]int{}}
	r := gin.New()
	RegisterRoutes(r, Dependencies{
		Codec:       auth.NewTokenCodec("secret"),
		Store:       store,
		Engine:      schedule.NewEngine(store, time.Local),
		Notifier:    notify.Nop{},
		Throttle:    throttle,
		AuthLimiter: middleware.NewRateLimiter(1000, 1000),
	})

	login := func(email, password string) int {
		raw, _ := json.Marshal(map[string]string{"email": email, "password": password})
		req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, login("ann@example.com", "password123"))
	assert.Equal(t, http.StatusUnauthorized, login("ann@example.com", "wrong-password"))
	assert.Equal(t, http.StatusUnauthorized, login("ANN@example.com", "wrong-password"))
	// the correct password no longer helps once the email is blocked
	assert.Equal(t, http.StatusTooManyRequests, login("ann@example.com", "password123"))
	assert.Equal(t, http.StatusUnauthorized, login("bob@example.com", "password123"))
}

func TestListingRejectsOverflowingPage(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user("alice", model.RoleUser)
	ts.createSchedule(token, true)

	for _, path := range []string{
		"/schedules?page=922337203685477581&limit=10",
		"/schedules?page=9223372036854775807",
		"/schedules/s?page=922337203685477581&limit=10",
	} {
		w, env := ts.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, path)
		require.NotNil(t, env.Error, path)
		assert.Contains(t, env.Error.FieldErrors, "page", path)
	}

	w, env := ts.do(http.MethodGet, "/schedules?page=1000&limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page pageBody
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, 1000, page.Page)
}
