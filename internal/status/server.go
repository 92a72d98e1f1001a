// Package status serves a read-only HTTP view of a running scheduler.
package status

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/viant/flightcore/progress"
)

// Source supplies the counters served under /progress.
type Source interface {
	Snapshot() progress.Progress
}

// Server is the status HTTP handler.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	source    Source
	startTime time.Time
}

// New creates a status server with all routes registered.
func New(source Source, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "status"),
		source:    source,
		startTime: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/progress", s.handleProgress)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type health struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptimeSec"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, health{Status: "ok", Uptime: time.Since(s.startTime).Seconds()})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.source.Snapshot())
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(started),
		)
	})
}
