// Package server exposes the matchup simulator over HTTP: session
// management, team catalogs, baseline simulation, slider updates, and
// history, plus Prometheus metrics and a WebSocket stream.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/statline/matchup-sim/pkg/history"
	"github.com/statline/matchup-sim/pkg/matchup"
	"github.com/statline/matchup-sim/pkg/metrics"
	"github.com/statline/matchup-sim/pkg/session"
	"github.com/statline/matchup-sim/pkg/streaming"
)

// Server handles HTTP requests for the simulator.
type Server struct {
	manager *session.Manager
	store   *history.Store
	hub     *streaming.Hub
	metrics *metrics.SimMetrics
	logger  *log.Logger
}

// NewServer creates a new API server. The history store may be nil,
// in which case baselines are not persisted.
func NewServer(manager *session.Manager, store *history.Store, hub *streaming.Hub, m *metrics.SimMetrics) *Server {
	s := &Server{
		manager: manager,
		store:   store,
		hub:     hub,
		metrics: m,
		logger:  log.New(os.Stdout, "[API] ", log.LstdFlags),
	}

	// Single registration point for the count callback: the gauge must
	// track sessions regardless of how the binary was flagged.
	manager.OnCountChange(func(n int) {
		m.ActiveSessions.Set(float64(n))
		s.logger.Printf("sessions active: %d", n)
	})

	return s
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	r.Get("/ws", s.hub.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/teams", s.handleTeams)
			r.Post("/matchup", s.handleSelectMatchup)
			r.Post("/sliders", s.handleSetSliders)
			r.Post("/sliders/reset", s.handleResetSliders)
		})
		r.Get("/history", s.handleHistory)
	})

	return r
}

// sessionState is the JSON shape of a session for API responses.
type sessionState struct {
	ID         string                 `json:"id"`
	Selection  session.Selection      `json:"selection"`
	Sliders    matchup.SliderState    `json:"sliders"`
	Result     *matchup.Result        `json:"result,omitempty"`
	Moneylines *matchup.MoneylinePair `json:"moneylines,omitempty"`
}

func stateOf(sess *session.Session) sessionState {
	state := sessionState{
		ID:        sess.ID,
		Selection: sess.Selection(),
		Sliders:   sess.Sliders(),
		Result:    sess.Result(),
	}
	if state.Result != nil {
		ml := matchup.Moneylines(*state.Result)
		state.Moneylines = &ml
	}
	return state
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.manager.Count(),
		"clients":  s.hub.ClientCount(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.manager.Create()
	sess.OnResult(func(res matchup.Result) {
		s.hub.BroadcastResult(sess.ID, res)
	})

	s.writeJSON(w, http.StatusCreated, stateOf(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.manager.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	sport := matchup.Sport(r.URL.Query().Get("sport"))
	if !sport.Valid() {
		s.writeError(w, http.StatusBadRequest, "unsupported sport")
		return
	}

	start := time.Now()
	teams, err := sess.Teams(r.Context(), sport)
	if err != nil {
		s.metrics.ObserveUpstream("teams", "error", time.Since(start))
		s.writeError(w, http.StatusBadGateway, "team catalog unavailable")
		return
	}
	s.metrics.ObserveUpstream("teams", "ok", time.Since(start))

	s.writeJSON(w, http.StatusOK, teams)
}

func (s *Server) handleSelectMatchup(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var sel session.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !sel.Sport.Valid() {
		s.writeError(w, http.StatusBadRequest, "unsupported sport")
		return
	}

	start := time.Now()
	_, err := sess.SelectMatchup(r.Context(), sel)
	switch {
	case errors.Is(err, session.ErrStaleSelection):
		s.metrics.BaselineFetches.WithLabelValues(string(sel.Sport), "stale").Inc()
		s.writeError(w, http.StatusConflict, "selection changed during fetch")
		return
	case err != nil:
		s.metrics.BaselineFetches.WithLabelValues(string(sel.Sport), "error").Inc()
		s.metrics.ObserveUpstream("simulation", "error", time.Since(start))
		s.logger.Printf("baseline fetch failed: %v", err)
		s.hub.BroadcastError(err, "baseline")
		s.writeError(w, http.StatusBadGateway, "baseline simulation failed")
		return
	}
	s.metrics.BaselineFetches.WithLabelValues(string(sel.Sport), "ok").Inc()
	s.metrics.ObserveUpstream("simulation", "ok", time.Since(start))

	if b := sess.Baseline(); b != nil {
		s.hub.BroadcastBaseline(sess.ID, b)
		s.recordBaseline(r, sess, sel, b)
	}

	s.writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) recordBaseline(r *http.Request, sess *session.Session, sel session.Selection, b *matchup.Baseline) {
	if s.store == nil {
		return
	}

	awayName, homeName := sel.AwayTeamID, sel.HomeTeamID
	if t, ok := sess.Team(sel.AwayTeamID); ok {
		awayName = t.Name
	}
	if t, ok := sess.Team(sel.HomeTeamID); ok {
		homeName = t.Name
	}

	if _, err := s.store.RecordBaseline(r.Context(), sel, awayName, homeName, b); err != nil {
		s.logger.Printf("history insert failed: %v", err)
	}
}

func (s *Server) handleSetSliders(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var sliders matchup.SliderState
	if err := json.NewDecoder(r.Body).Decode(&sliders); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	_, err := sess.SetSliders(sliders)
	if err != nil {
		s.writeError(w, http.StatusConflict, "no baseline: select a matchup first")
		return
	}
	s.metrics.ObserveRecompute(time.Since(start))

	s.writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleResetSliders(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if _, err := sess.ResetSliders(); err != nil {
		s.writeError(w, http.StatusConflict, "no baseline: select a matchup first")
		return
	}

	s.writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "history not enabled")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page, err := s.store.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Printf("history list failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}

	s.writeJSON(w, http.StatusOK, page)
}

// session resolves the {id} URL parameter, writing a 404 on miss.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
