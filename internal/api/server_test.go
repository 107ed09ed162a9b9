package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/adastrea-verse/internal/content"
	"github.com/talgya/adastrea-verse/internal/engine"
	"github.com/talgya/adastrea-verse/internal/entropy"
	"github.com/talgya/adastrea-verse/internal/metrics"
	"github.com/talgya/adastrea-verse/internal/persistence"
)

const testKey = "secret"

func newServer(t *testing.T) *Server {
	t.Helper()
	cat, err := content.Default()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sim, err := engine.NewSimulation(cat, engine.Options{Entropy: entropy.Fixed(0), Metrics: m})
	require.NoError(t, err)

	s := &Server{
		Sim:      sim,
		Eng:      engine.NewEngine(),
		Metrics:  m,
		Gatherer: reg,
		AdminKey: testKey,
	}
	t.Cleanup(func() {
		if s.limiter != nil {
			s.limiter.Close()
		}
	})
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPublicEndpoints(t *testing.T) {
	h := newServer(t).Handler()

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/status", http.StatusOK},
		{"/api/v1/factions", http.StatusOK},
		{"/api/v1/faction/solaris-union", http.StatusOK},
		{"/api/v1/faction/nobody", http.StatusNotFound},
		{"/api/v1/crew", http.StatusOK},
		{"/api/v1/councils", http.StatusOK},
		{"/api/v1/feats", http.StatusOK},
		{"/api/v1/standing", http.StatusOK},
		{"/api/v1/standing?way=solaris-union", http.StatusOK},
		{"/api/v1/standing?way=nowhere", http.StatusNotFound},
		{"/api/v1/standing?player=ghost", http.StatusNotFound},
		{"/api/v1/antagonists?min_heat=101", http.StatusBadRequest},
		{"/api/v1/events?source=journal", http.StatusServiceUnavailable},
		{"/metrics", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "", false)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestAdminAuth(t *testing.T) {
	s := newServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":2}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":2}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, s.Eng.Speed())

	rec = do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":5000}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.AdminKey = ""
	rec = do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":2}`, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCompleteFeatEndpoint(t *testing.T) {
	s := newServer(t)
	h := s.Handler()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"locked", `{"feat":"reaver-bane"}`, http.StatusConflict},
		{"unknown feat", `{"feat":"nope"}`, http.StatusNotFound},
		{"unknown player", `{"player":"ghost","feat":"convoy-guardian"}`, http.StatusNotFound},
		{"bad json", `{`, http.StatusBadRequest},
		{"completes", `{"feat":"convoy-guardian"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/feat", tt.body, true)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, h, http.MethodPost, "/api/v1/feat", `{"feat":"convoy-guardian"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["recorded"])

	type featRow struct {
		ID        string `json:"id"`
		Completed bool   `json:"completed"`
	}
	feats := decode[[]featRow](t, do(t, h, http.MethodGet, "/api/v1/feats", "", false))
	var done []string
	for _, f := range feats {
		if f.Completed {
			done = append(done, f.ID)
		}
	}
	assert.Equal(t, []string{"convoy-guardian"}, done)

	events := decode[[]engine.Event](t, do(t, h, http.MethodGet, "/api/v1/events?category=feat", "", false))
	require.Len(t, events, 1)
	assert.Equal(t, "convoy-guardian", events[0].Subject)
}

func TestAntagonistEndpoints(t *testing.T) {
	s := newServer(t)
	h := s.Handler()

	_, err := s.Sim.CompleteFeat("player", "convoy-guardian")
	require.NoError(t, err)

	type row struct {
		ID        string `json:"id"`
		Heat      int    `json:"heat"`
		FactionID string `json:"faction_id"`
	}
	rivals := decode[[]row](t, do(t, h, http.MethodGet, "/api/v1/antagonists?active=true&min_heat=40", "", false))
	require.Len(t, rivals, 1)
	assert.Equal(t, 45, rivals[0].Heat)
	assert.Equal(t, "crimson-reavers", rivals[0].FactionID)

	rec := do(t, h, http.MethodPost, "/api/v1/encounter", `{"id":"`+rivals[0].ID+`"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 50, decode[map[string]any](t, rec)["heat"])

	rec = do(t, h, http.MethodPost, "/api/v1/encounter", `{"id":"not-a-uuid"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/encounter", `{"id":"00000000-0000-0000-0000-000000000001"}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCouncilsEndpoint(t *testing.T) {
	h := newServer(t).Handler()

	type council struct {
		ID              string `json:"id"`
		PassThreshold   int    `json:"pass_threshold"`
		Representatives []struct {
			WayID        string `json:"way_id"`
			VotingWeight int    `json:"voting_weight"`
		} `json:"representatives"`
		Policies []struct {
			Type   string `json:"type"`
			Active bool   `json:"active"`
		} `json:"policies"`
	}
	cs := decode[[]council](t, do(t, h, http.MethodGet, "/api/v1/councils", "", false))
	require.Len(t, cs, 1)
	assert.Equal(t, "kessler-reach", cs[0].ID)
	assert.Equal(t, 51, cs[0].PassThreshold)
	require.Len(t, cs[0].Representatives, 4)
	assert.Equal(t, "solaris-union", cs[0].Representatives[0].WayID)
	assert.Equal(t, 35, cs[0].Representatives[0].VotingWeight)
	require.Len(t, cs[0].Policies, 1)
	assert.Equal(t, "TradeRegulation", cs[0].Policies[0].Type)
	assert.True(t, cs[0].Policies[0].Active)
}

func TestAdminRateLimit(t *testing.T) {
	s := newServer(t)
	s.AdminRate = 2
	h := s.Handler()

	for range 2 {
		rec := do(t, h, http.MethodPost, "/api/v1/feat", `{"feat":"nope"}`, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/api/v1/feat", `{"feat":"nope"}`, true)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestSnapshotJournal(t *testing.T) {
	s := newServer(t)
	db, err := persistence.Open(filepath.Join(t.TempDir(), "verse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s.DB = db
	h := s.Handler()

	_, err = s.Sim.CompleteFeat("player", "first-contact")
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/api/v1/snapshot", "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	events := decode[[]engine.Event](t, do(t, h, http.MethodGet, "/api/v1/events?source=journal", "", false))
	assert.Len(t, events, len(s.Sim.EventsSince(0)))
}

func TestStream(t *testing.T) {
	s := newServer(t)
	_, err := s.Sim.CompleteFeat("player", "first-contact")
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first engine.Event
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "first-contact", first.Subject)

	require.Eventually(t, func() bool { return s.Sim.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	_, err = s.Sim.CompleteFeat("player", "convoy-guardian")
	require.NoError(t, err)

	var live engine.Event
	for live.Subject != "convoy-guardian" {
		require.NoError(t, conn.ReadJSON(&live))
	}
	assert.Equal(t, engine.CategoryFeat, live.Category)
}
