// Package server exposes the dream service as a JSON API over chi.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"dreamer/internal/config"
	"dreamer/internal/dream"
	"dreamer/internal/session"
	"dreamer/internal/usage"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Server is the HTTP surface. Each session id owns one session.State.
type Server struct {
	svc      *dream.Service
	registry *session.Registry
	tracker  *usage.Tracker
	cfg      *config.Config
	logger   *zap.Logger
}

// New creates a server. tracker may be nil.
func New(cfg *config.Config, svc *dream.Service, registry *session.Registry, tracker *usage.Tracker, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:      svc,
		registry: registry,
		tracker:  tracker,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Post("/sessions", s.createSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.endSession)
			r.Post("/symbols", s.detectSymbols)
			r.Post("/interpretations", s.createInterpretation)
			r.Delete("/current", s.clearCurrent)
			r.Get("/export", s.exportCurrent)

			r.Route("/journal", func(r chi.Router) {
				r.Get("/", s.listJournal)
				r.Post("/", s.saveCurrent)
				r.Get("/{number}", s.getJournalEntry)
			})
		})
	})

	return router
}

// Serve runs the API on ln until ctx is cancelled, sweeping idle sessions in
// the background, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.GetReadTimeout(),
		WriteTimeout: s.cfg.GetWriteTimeout(),
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		s.registry.Run(sweepCtx, sweepInterval(s.cfg.GetSessionTTL()))
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("dreamer API listening", zap.String("addr", ln.Addr().String()))

	var serveErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	stopSweep()
	<-sweepDone
	s.logger.Info("dreamer API stopped")
	return serveErr
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	interval := ttl / 10
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}
