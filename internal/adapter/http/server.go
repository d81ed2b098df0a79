package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/compliance-dashboard/internal/domain"
	"github.com/couchcryptid/compliance-dashboard/internal/presentation"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Session is the dashboard state the server reads from and reloads.
// *pipeline.Session implements it.
type Session interface {
	sharedobs.ReadinessChecker
	Load(ctx context.Context) (domain.Snapshot, bool)
	Snapshot() domain.Snapshot
	Loading() bool
}

// Server exposes health, readiness, metrics and the dashboard JSON API.
type Server struct {
	httpServer    *http.Server
	session       Session
	reloadTimeout time.Duration
	logger        *slog.Logger
}

// NewServer creates an HTTP server with probe routes and the /api/v1 views.
func NewServer(addr string, session Session, reloadTimeout time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: reloadTimeout + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		session:       session,
		reloadTimeout: reloadTimeout,
		logger:        logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(session))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/v1/markers", s.handleMarkers)
	mux.HandleFunc("GET /api/v1/tiers", s.handleTiers)
	mux.HandleFunc("GET /api/v1/alerts", s.handleAlerts)
	mux.HandleFunc("GET /api/v1/trend", s.handleTrend)
	mux.HandleFunc("POST /api/v1/reload", s.handleReload)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, presentation.Build(snap, s.session.Loading()))
}

func (s *Server) handleMarkers(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, presentation.MapMarkers(snap.Records))
}

func (s *Server) handleTiers(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, presentation.TierDistributionSeries(snap.Records))
}

func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.current(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, presentation.AlertList(snap.Records))
}

func (s *Server) handleTrend(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, presentation.WeeklyTrend())
}

// handleReload runs a load bounded by the reload timeout. A load superseded
// by a newer one still returns 200 with the newer snapshot. The load is
// detached from the request so a client hang-up cannot discard it.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.reloadTimeout)
	defer cancel()

	snap, committed := s.session.Load(ctx)
	s.logger.Info("reload requested", "load_id", snap.LoadID, "committed", committed, "degraded", snap.Degraded)
	sharedobs.WriteJSON(w, http.StatusOK, presentation.Build(snap, s.session.Loading()))
}

// current returns the committed snapshot, or writes 503 when nothing has
// been loaded yet.
func (s *Server) current(w http.ResponseWriter) (domain.Snapshot, bool) {
	snap := s.session.Snapshot()
	if snap.IsZero() {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "no project snapshot loaded yet",
		})
		return snap, false
	}
	return snap, true
}
