// Package server exposes the ingest HTTP API: POST /upload, the health report
// at / and /health, and Prometheus metrics at /metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/watchme-vault/internal/health"
	"github.com/dharsanguruparan/watchme-vault/internal/upload"
)

const shutdownTimeout = 10 * time.Second

// Uploader runs one upload. *upload.Service implements it.
type Uploader interface {
	Submit(ctx context.Context, req upload.Request) (*upload.Result, error)
	MaxFileSize() int64
}

type HealthReporter interface {
	Report() health.Report
}

type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// TempDir holds spooled uploads; empty means os.TempDir.
	TempDir string
}

// Server serves the vault HTTP API.
type Server struct {
	cfg      Config
	uploader Uploader
	health   HealthReporter
}

// New constructs an HTTP server for the upload and health endpoints.
func New(cfg Config, uploader Uploader, reporter HealthReporter) *Server {
	return &Server{cfg: cfg, uploader: uploader, health: reporter}
}

// Routes returns the HTTP handler with all middleware applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(accessLog)
	r.Use(promMiddleware)
	r.Use(corsMiddleware)

	r.Get("/", s.handleHealth)
	r.Get("/health", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()
	log.Info().Str("address", s.cfg.Address).Msg("vault listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.health.Report())
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode json failed")
	}
}
