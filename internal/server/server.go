package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/jobscout/platform/internal/config"
	"github.com/jobscout/platform/internal/metrics"
)

// Server wraps the HTTP server and related dependencies.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	server  *http.Server
	mux     *http.ServeMux
	metrics *metrics.Metrics
}

// New constructs a server with base routes and middleware wiring.
func New(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           instrument(logger, m, mux),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		server:  srv,
		mux:     mux,
		metrics: m,
	}
}

// Run starts the HTTP server and blocks until it exits or errors.
func (s *Server) Run() error {
	s.logger.Info("api server listening", "addr", s.server.Addr, "env", s.cfg.Env, "deploy_target", s.cfg.DeployTarget)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server within the provided context timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Mux exposes the underlying mux for route registration by other packages.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func instrument(logger *slog.Logger, m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		if m != nil {
			m.ObserveRequest(routeLabel(r.URL.Path), r.Method, rec.status, elapsed)
		}
		logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", elapsed)
	})
}

// routeLabel collapses per-resource paths so metric cardinality stays bounded.
func routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/scrapes/") && len(path) > len("/v1/scrapes/"):
		return "/v1/scrapes/:id"
	case path == "/scrape", path == "/v1/scrapes", path == "/v1/ping",
		path == "/healthz", path == "/readyz", path == "/metrics":
		return path
	default:
		return "other"
	}
}
