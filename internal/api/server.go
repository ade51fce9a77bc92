// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api exposes the session controller over a local HTTP control API
// consumed by the page.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/unmark/internal/api/middleware"
	"github.com/ManuGH/unmark/internal/health"
	xlog "github.com/ManuGH/unmark/internal/log"
	"github.com/ManuGH/unmark/internal/session"
)

// Config controls the HTTP surface.
type Config struct {
	ListenAddr string
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int
	// TracingService names server spans; empty disables request tracing.
	TracingService  string
	ShutdownTimeout time.Duration
	// Version is reported by the health endpoints.
	Version string
	// Checkers are added to the readiness probe next to the session check.
	Checkers []health.Checker
}

// Server routes control requests to one session controller.
type Server struct {
	cfg    Config
	ctrl   *session.Controller
	router chi.Router
	health *health.Manager
	logger zerolog.Logger
}

// New builds the router for ctrl.
func New(ctrl *session.Controller, cfg Config) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		cfg:    cfg,
		ctrl:   ctrl,
		health: health.NewManager(cfg.Version),
		logger: xlog.WithComponent("api"),
	}
	s.health.RegisterChecker(health.NewFuncChecker("session", func(context.Context) error {
		if ctrl.Closed() {
			return session.ErrClosed
		}
		return nil
	}))
	for _, c := range cfg.Checkers {
		s.health.RegisterChecker(c)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        s.cfg.TracingService,
		EnableLogging:         true,
		RateLimit:             s.cfg.RateLimit,
		RateWindow:            time.Minute,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Post("/reset", s.handleReset)
			r.Post("/file", s.handleChooseFile)
			r.Post("/upload", s.handleUpload)
			r.Post("/media", s.handleMedia)
			r.Put("/layout", s.handleLayout)
			r.Put("/options", s.handleOptions)
			r.Post("/process", s.handleProcess)
			r.Post("/download", s.handleDownload)
		})
		r.Route("/region", func(r chi.Router) {
			r.Post("/pointer", s.handlePointer)
			r.Delete("/", s.handleClearRegion)
		})
		r.Route("/compare", func(r chi.Router) {
			r.Get("/", s.handleCompareState)
			r.Post("/toggle", s.handleToggle)
			r.Put("/reveal", s.handleReveal)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then drains connections.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str(xlog.FieldEvent, "api.listen").Str("addr", s.cfg.ListenAddr).Msg("control API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("control API: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info().Str(xlog.FieldEvent, "api.shutdown").Msg("shutting down control API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("control API shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("control API: %w", err)
	}
	return nil
}
