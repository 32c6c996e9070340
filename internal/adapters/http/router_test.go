package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Eden/internal/app"
	"github.com/dkeye/Eden/internal/app/users"
	"github.com/dkeye/Eden/internal/config"
	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

type idleSub[T any] struct{ ch chan T }

func (s *idleSub[T]) Events() <-chan T { return s.ch }
func (s *idleSub[T]) Err() error       { return nil }
func (s *idleSub[T]) Close()           {}

type stubSoil struct {
	mu      sync.Mutex
	updates []core.UpdateMemberInput
}

func (s *stubSoil) FindRoom(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	return &domain.Room{ID: id, Members: []domain.MemberRef{{ID: "m1"}}}, nil
}

func (s *stubSoil) FindMembers(_ context.Context, ids []domain.MemberID) ([]domain.Member, error) {
	out := make([]domain.Member, 0, len(ids))
	for _, id := range ids {
		if id == "ghost" {
			continue
		}
		out = append(out, domain.Member{ID: id, DiscordName: "name-" + string(id), Discriminator: "0001"})
	}
	return out, nil
}

func (s *stubSoil) FindRoleTemplates(context.Context) ([]domain.Role, error) {
	return []domain.Role{{ID: "dev", Title: "Developer"}}, nil
}

func (s *stubSoil) EnterRoom(context.Context, domain.RoomID, domain.MemberID) error { return nil }

func (s *stubSoil) UpdateMember(_ context.Context, in core.UpdateMemberInput) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, in)
	return &domain.Member{ID: in.ID}, nil
}

func (s *stubSoil) RoomUpdated(context.Context, domain.RoomID) (core.Subscription[domain.Room], error) {
	return &idleSub[domain.Room]{ch: make(chan domain.Room)}, nil
}

func (s *stubSoil) MemberUpdated(context.Context, []domain.MemberID) (core.Subscription[domain.Member], error) {
	return &idleSub[domain.Member]{ch: make(chan domain.Member)}, nil
}

type testServer struct {
	router *gin.Engine
	orch   *app.Orchestrator
	soil   *stubSoil
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>Eden</h1>"), 0o644))

	soil := &stubSoil{}
	provider, err := users.NewProvider(soil, 8)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	orch := app.NewOrchestrator(ctx, soil, provider)
	cfg := &config.Config{Mode: "test", StaticPath: static, Secret: "test-secret", PingPeriod: 30 * time.Second}
	return &testServer{router: SetupRouter(ctx, cfg, orch), orch: orch, soil: soil}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// merge keeps the latest value of every cookie name.
func merge(old []*http.Cookie, w *httptest.ResponseRecorder) []*http.Cookie {
	byName := make(map[string]*http.Cookie)
	var order []string
	for _, c := range append(old, w.Result().Cookies()...) {
		if _, ok := byName[c.Name]; !ok {
			order = append(order, c.Name)
		}
		byName[c.Name] = c
	}
	out := make([]*http.Cookie, 0, len(order))
	for _, n := range order {
		out = append(out, byName[n])
	}
	return out
}

func tokenCookie(sid string) *http.Cookie {
	return &http.Cookie{Name: clientTokenCookie, Value: sid}
}

func TestIndexAndClientToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Eden")

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == clientTokenCookie {
			found = c.Value != ""
		}
	}
	assert.True(t, found, "client token cookie must be issued")
}

func TestPartyPageForGuest(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/party/r1", "", []*http.Cookie{tokenCookie("sid1")})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "You must be logged in to edit your profile.")
	assert.Contains(t, body, "name-m1")
	assert.NotContains(t, body, `id="bio-form"`)

	_, held := s.orch.Registry.PartyOf("sid1")
	assert.False(t, held, "page render must release its view")
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t)
	cookies := []*http.Cookie{tokenCookie("sid1")}

	w := s.do(t, http.MethodPost, "/api/login", `{}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/login", `{"member_id":"ghost"}`, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/login", `{"member_id":"m1"}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	cookies = merge(cookies, w)

	w = s.do(t, http.MethodGet, "/api/me", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Member *domain.User `json:"member"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	require.NotNil(t, me.Member)
	assert.Equal(t, domain.MemberID("m1"), me.Member.ID)

	w = s.do(t, http.MethodGet, "/party/r1", "", cookies)
	assert.Contains(t, w.Body.String(), `id="bio-form"`)
	assert.NotContains(t, w.Body.String(), "You must be logged in")

	w = s.do(t, http.MethodPost, "/api/logout", "", cookies)
	assert.Equal(t, http.StatusNoContent, w.Code)
	cookies = merge(cookies, w)
	w = s.do(t, http.MethodGet, "/api/me", "", cookies)
	assert.JSONEq(t, `{"member":null}`, w.Body.String())
}

func TestLoginRestoredFromCookieSession(t *testing.T) {
	first := newTestServer(t)
	w := first.do(t, http.MethodPost, "/api/login", `{"member_id":"m1"}`, []*http.Cookie{tokenCookie("sid1")})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := merge([]*http.Cookie{tokenCookie("sid1")}, w)

	restarted := newTestServer(t)
	w = restarted.do(t, http.MethodGet, "/api/me", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"_id":"m1"`)
	_, ok := restarted.orch.Registry.MemberOf("sid1")
	assert.True(t, ok)
}

func TestPartySnapshotJSON(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/party/r1", "", []*http.Cookie{tokenCookie("sid1")})
	require.Equal(t, http.StatusOK, w.Code)
	var snap struct {
		RoomID    string   `json:"room_id"`
		Known     bool     `json:"known"`
		MemberIDs []string `json:"member_ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "r1", snap.RoomID)
	assert.True(t, snap.Known)
	assert.Equal(t, []string{"m1"}, snap.MemberIDs)
}

func TestUpdateProfileStatuses(t *testing.T) {
	s := newTestServer(t)
	cookies := []*http.Cookie{tokenCookie("sid1")}
	body := `{"field":"bio","value":"hello"}`

	w := s.do(t, http.MethodPost, "/api/profile", `{"value":"x"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/profile", body, cookies)
	assert.Equal(t, http.StatusConflict, w.Code)

	_, release := s.orch.AcquireParty(context.Background(), "sid1", "r1")
	defer release()
	w = s.do(t, http.MethodPost, "/api/profile", body, cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/login", `{"member_id":"m1"}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	cookies = merge(cookies, w)
	w = s.do(t, http.MethodPost, "/api/profile", body, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	s.soil.mu.Lock()
	defer s.soil.mu.Unlock()
	require.Len(t, s.soil.updates, 1)
	assert.Equal(t, "hello", *s.soil.updates[0].Bio)
}

func TestRoles(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/roles", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"roles":[{"_id":"dev","title":"Developer"}]}`, w.Body.String())
}
