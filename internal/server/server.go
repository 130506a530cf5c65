// Package server exposes safe-phase enumeration over HTTP.
//
// Routes:
//
//	POST /v1/phases              matrix document -> enumeration result
//	POST /v1/states              matrix document -> signal state strings
//	POST /v1/render?format=svg   matrix document -> conflict graph (svg|dot)
//	GET  /v1/catalog             latest stored result per junction
//	GET  /v1/catalog/{junction}  latest stored result for one junction
//	GET  /healthz                build info
//	GET  /metrics                Prometheus metrics, when configured
//
// Request bodies use the matrix JSON document of package io. Errors are
// returned as {"code": "...", "message": "..."} with a status derived from
// the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/safephase/pkg/catalog"
	"github.com/matzehuels/safephase/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds request bodies. A 1 MiB matrix document holds
// roughly 500 connections, far beyond any real junction.
const DefaultMaxBodyBytes = 1 << 20

// DefaultMaxPhases caps every enumeration when Config.MaxPhases is not set.
// The phase count of a junction can grow as 2^n, so the API is never
// unlimited.
const DefaultMaxPhases = 100_000

// Config configures a Server.
type Config struct {
	Runner  *pipeline.Runner
	Catalog catalog.Store
	Logger  *log.Logger

	// Metrics serves /metrics. The route is omitted when nil.
	Metrics http.Handler

	// MaxPhases applies to every request that does not set a lower limit.
	// Zero means DefaultMaxPhases.
	MaxPhases int

	MaxBodyBytes int64
	Timeout      time.Duration
}

// Server is the HTTP API.
type Server struct {
	runner    *pipeline.Runner
	catalog   catalog.Store
	logger    *log.Logger
	metrics   http.Handler
	maxPhases int
	maxBody   int64
	timeout   time.Duration
}

// New creates a server. A nil Runner gets an uncached runner, a nil Catalog
// an in-memory store and a zero MaxPhases DefaultMaxPhases.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.NewMemoryStore()
	}
	if cfg.MaxPhases <= 0 {
		cfg.MaxPhases = DefaultMaxPhases
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Server{
		runner:    cfg.Runner,
		catalog:   cfg.Catalog,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		maxPhases: cfg.MaxPhases,
		maxBody:   cfg.MaxBodyBytes,
		timeout:   cfg.Timeout,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/phases", s.handlePhases)
		r.Post("/states", s.handleStates)
		r.Post("/render", s.handleRender)
		r.Get("/catalog", s.handleCatalogList)
		r.Get("/catalog/{junction}", s.handleCatalogGet)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
