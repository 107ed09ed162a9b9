// Package api provides the HTTP API for observing the simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/adastrea-verse/internal/engine"
	"github.com/talgya/adastrea-verse/internal/metrics"
	"github.com/talgya/adastrea-verse/internal/persistence"
)

// Server serves the simulation over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // optional journal
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // nil serves the default registry
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	AdminRate   int
	AdminWindow time.Duration

	srv     *http.Server
	limiter *RateLimiter
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	if s.limiter == nil {
		rate, window := s.AdminRate, s.AdminWindow
		if rate <= 0 {
			rate = 30
		}
		if window <= 0 {
			window = time.Minute
		}
		s.limiter = NewRateLimiter(rate, window)
	}
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		return s.adminOnly(RateLimitMiddleware(s.limiter, h))
	}

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/factions", s.handleFactions)
	mux.HandleFunc("GET /api/v1/faction/{id}", s.handleFactionDetail)
	mux.HandleFunc("GET /api/v1/crew", s.handleCrew)
	mux.HandleFunc("GET /api/v1/councils", s.handleCouncils)
	mux.HandleFunc("GET /api/v1/feats", s.handleFeats)
	mux.HandleFunc("GET /api/v1/standing", s.handleStanding)
	mux.HandleFunc("GET /api/v1/antagonists", s.handleAntagonists)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)

	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("POST /api/v1/feat", limited(s.handleCompleteFeat))
	mux.HandleFunc("POST /api/v1/encounter", limited(s.handleEncounter))
	mux.HandleFunc("POST /api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("POST /api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Close()
	}
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && token == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no VERSESIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	tick, seconds, stats := s.Sim.Snapshot()
	status := map[string]any{
		"name":     "Adastrea Verse",
		"tick":     tick,
		"sim_time": engine.SimTime(seconds),
		"players":  s.Sim.Players(),
		"stats":    stats,
		"streams":  s.Sim.Subscribers(),
	}
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	writeJSON(w, status)
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Factions())
}

func (s *Server) handleFactionDetail(w http.ResponseWriter, r *http.Request) {
	f, ok := s.Sim.Faction(r.PathValue("id"))
	if !ok {
		http.Error(w, "faction not found", http.StatusNotFound)
		return
	}
	writeJSON(w, f)
}

func (s *Server) handleCrew(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Crew())
}

func (s *Server) handleCouncils(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Councils())
}

// player resolves the ?player= parameter, defaulting to the first player.
func (s *Server) player(r *http.Request) string {
	if p := r.URL.Query().Get("player"); p != "" {
		return p
	}
	if ps := s.Sim.Players(); len(ps) > 0 {
		return ps[0]
	}
	return ""
}

func (s *Server) handleFeats(w http.ResponseWriter, r *http.Request) {
	type featSummary struct {
		ID            string   `json:"id"`
		Title         string   `json:"title"`
		Rarity        string   `json:"rarity"`
		Prerequisites []string `json:"prerequisites,omitempty"`
		Completed     bool     `json:"completed"`
	}

	done, err := s.Sim.CompletedFeats(s.player(r))
	if err != nil {
		writeError(w, err)
		return
	}
	completed := make(map[string]bool, len(done))
	for _, id := range done {
		completed[id] = true
	}

	var out []featSummary
	for _, f := range s.Sim.Catalog.Feats {
		if f.Hidden && !completed[f.ID] {
			continue
		}
		out = append(out, featSummary{
			ID:            f.ID,
			Title:         f.Title,
			Rarity:        f.Rarity.String(),
			Prerequisites: f.Prerequisites,
			Completed:     completed[f.ID],
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleStanding(w http.ResponseWriter, r *http.Request) {
	player := s.player(r)
	if wayID := r.URL.Query().Get("way"); wayID != "" {
		st, err := s.Sim.Standing(player, wayID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, st)
		return
	}
	all, err := s.Sim.Standings(player)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, all)
}

func (s *Server) handleAntagonists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	active := q.Get("active") == "true"
	minHeat := 0
	if v := q.Get("min_heat"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			http.Error(w, "min_heat must be 0-100", http.StatusBadRequest)
			return
		}
		minHeat = n
	}

	type antagonistView struct {
		ID         uuid.UUID `json:"id"`
		Name       string    `json:"name"`
		Goal       string    `json:"goal"`
		Heat       int       `json:"heat"`
		FeatID     string    `json:"feat_id,omitempty"`
		FactionID  string    `json:"faction_id,omitempty"`
		Traits     []string  `json:"traits,omitempty"`
		Encounters int       `json:"encounters"`
		Active     bool      `json:"active"`
		Summary    string    `json:"summary"`
	}
	rs := s.Sim.Antagonists(active, minHeat)
	out := make([]antagonistView, len(rs))
	for i, a := range rs {
		out[i] = antagonistView{
			ID:         a.ID,
			Name:       a.Name,
			Goal:       a.Goal.String(),
			Heat:       a.Heat,
			FeatID:     a.FeatID,
			FactionID:  a.FactionID,
			Traits:     a.Traits,
			Encounters: a.Encounters,
			Active:     a.Active,
			Summary:    a.Describe(),
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	category := q.Get("category")

	// The journal holds history older than the in-memory buffer.
	if q.Get("source") == "journal" {
		if s.DB == nil {
			http.Error(w, "journal not available", http.StatusServiceUnavailable)
			return
		}
		events, err := s.DB.RecentEvents(limit, category)
		if err != nil {
			slog.Error("journal read failed", "error", err)
			http.Error(w, "journal read failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, events)
		return
	}

	events := s.Sim.RecentEvents(0)
	if category != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, events)
}

func (s *Server) handleCompleteFeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Player string `json:"player"`
		Feat   string `json:"feat"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Player == "" {
		req.Player = s.player(r)
	}

	recorded, err := s.Sim.CompleteFeat(req.Player, req.Feat)
	if err != nil {
		writeError(w, err)
		return
	}
	slog.Info("feat completed via API", "player", req.Player, "feat", req.Feat, "new", recorded)
	writeJSON(w, map[string]any{
		"player":   req.Player,
		"feat":     req.Feat,
		"recorded": recorded,
	})
}

func (s *Server) handleEncounter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		http.Error(w, "invalid antagonist id", http.StatusBadRequest)
		return
	}
	a, err := s.Sim.RecordEncounter(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"id":         a.ID,
		"heat":       a.Heat,
		"encounters": a.Encounters,
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not available", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 1000 {
		http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
		return
	}
	s.Eng.SetSpeed(req.Speed)
	slog.Info("speed changed", "speed", req.Speed)
	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	if err := s.DB.Flush(s.Sim); err != nil {
		s.Metrics.RecordJournalError()
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	tick, _, _ := s.Sim.Snapshot()
	writeJSON(w, map[string]any{
		"tick":    tick,
		"message": "journal flushed",
	})
}

// writeError maps simulation errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrUnknownPlayer),
		errors.Is(err, engine.ErrUnknownWay),
		errors.Is(err, engine.ErrUnknownFeat),
		errors.Is(err, engine.ErrUnknownRival):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
