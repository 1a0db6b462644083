// Package server provides the HTTP API for kiku.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/internal/observe"
	"github.com/hyperjump/kiku/internal/session"
)

// requestTimeout bounds a request. Builds embed whole transcripts, so it is generous.
const requestTimeout = 10 * time.Minute

// Server is the HTTP server for the kiku API.
type Server struct {
	sessions *session.Manager
	config   *config.Config
	metrics  *observe.Metrics
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. metrics may be nil.
func NewServer(sessions *session.Manager, cfg *config.Config, metrics *observe.Metrics, logger *zap.Logger) *Server {
	return &Server{
		sessions: sessions,
		config:   cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(observe.Middleware(s.metrics))
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Route("/videos", func(r chi.Router) {
			r.Get("/", s.handleListVideos)
			r.Post("/", s.handleBuildVideo)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetVideo)
				r.Delete("/", s.handleClearVideo)
				r.Post("/ask", s.handleAsk)
				r.Post("/search", s.handleSearch)
			})
		})
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
