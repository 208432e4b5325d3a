// Package web provides the JSON HTTP API of the discovery engine.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/justestif/go-vibe-discovery/internal/logging"
	"github.com/justestif/go-vibe-discovery/internal/session"
)

const (
	// DefaultAddr is the default server address.
	DefaultAddr = "127.0.0.1:8080"

	defaultShutdownTimeout = 10 * time.Second
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// RateLimit is requests per minute per client IP on /api. Zero disables it.
	RateLimit   int
	CORSOrigins []string

	// MoodClusters is the default k for mood grouping.
	MoodClusters int

	// HealthCheck, when set, is consulted by /healthz.
	HealthCheck func(ctx context.Context) error
}

// Server is the HTTP server for the API.
type Server struct {
	cfg      ServerConfig
	router   chi.Router
	server   *http.Server
	handlers *Handlers
}

// NewServer creates a new API server over registry.
func NewServer(cfg ServerConfig, registry *session.Registry) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	router := chi.NewRouter()
	s := &Server{
		cfg:      cfg,
		router:   router,
		handlers: NewHandlers(registry, cfg.MoodClusters),
	}

	// Configure middleware
	s.setupMiddleware()

	// Configure routes
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	if len(s.cfg.CORSOrigins) > 0 {
		s.router.Use(corsMiddleware(s.cfg.CORSOrigins))
	}
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	s.router.Get("/healthz", s.health)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(s.cfg.RateLimit))
		r.Use(middleware.NoCache)

		r.Get("/categories", h.ListCategories)
		r.Get("/filters", h.ListFilters)
		r.Get("/strategies", h.ListStrategies)
		r.Get("/items/{itemID}", h.GetItem)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)
			r.Get("/", h.ListSessions)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Use(h.loadSession)

				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Post("/genre", h.SetGenrePool)
				r.Get("/filters", h.GetQueue)
				r.Post("/filters", h.ApplyFilter)
				r.Get("/next", h.NextItem)
				r.Post("/clear", h.Clear)
				r.Post("/shown/clear", h.ClearShown)
				r.Get("/stats", h.Stats)
				r.Get("/rebuild", h.LastRebuild)
				r.Get("/moods", h.Moods)
				r.Get("/config", h.GetConfig)
				r.Put("/config", h.UpdateConfig)
				r.Get("/likes", h.ListLikes)
				r.Post("/likes", h.Like)
			})
		})
	})

}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.cfg.HealthCheck != nil {
		if err := s.cfg.HealthCheck(r.Context()); err != nil {
			logging.Warn().Err(err).Msg("health check failed")
			respondError(w, http.StatusServiceUnavailable, "UNHEALTHY", "dependency unavailable")
			return
		}
	}
	respondOK(w, map[string]string{"status": "ok"})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.server.Addr).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down when ctx ends or on an
// interrupt signal.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt or error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info().Msg("shutting down server")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logging.Info().Msg("server stopped")
	return nil
}
