// Package api serves the scan pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/safety/health"
	"github.com/taj0207/IngredientCheck/internal/safety/pipeline"
)

// Scanner is the part of the application the API drives.
type Scanner interface {
	ProcessImage(ctx context.Context, image []byte, opts pipeline.Options) (*domain.ScanResult, error)
	ResolveBatch(ctx context.Context, names []string) map[string]domain.SafetyInfo
	ClearCache(ctx context.Context) error
}

// Config holds the HTTP server settings.
type Config struct {
	Port         int
	MaxImageSize int64
	ScanTimeout  time.Duration
}

const (
	defaultMaxImageSize = 10 << 20
	maxResolveBody      = 1 << 20
	maxResolveNames     = 200
)

// Server exposes the scan endpoints, health and metrics.
type Server struct {
	scanner Scanner
	monitor *health.Monitor
	cfg     Config
	server  *http.Server
	logger  *slog.Logger
}

// NewServer creates a new API server. monitor may be nil.
func NewServer(scanner Scanner, monitor *health.Monitor, cfg Config) *Server {
	if cfg.MaxImageSize <= 0 {
		cfg.MaxImageSize = defaultMaxImageSize
	}
	s := &Server{
		scanner: scanner,
		monitor: monitor,
		cfg:     cfg,
		logger:  slog.Default().With("component", "api"),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/scans", s.handleScan)
		r.Post("/resolve", s.handleResolve)
		r.Delete("/cache", s.handleClearCache)
	})

	if s.monitor != nil {
		r.Get("/health", s.monitor.HandleHealth)
		r.Get("/health/detailed", s.monitor.HandleDetailed)
	}
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("API listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
