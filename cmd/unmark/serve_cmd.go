// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"io"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/unmark/internal/api"
	"github.com/ManuGH/unmark/internal/config"
	"github.com/ManuGH/unmark/internal/dropzone"
	"github.com/ManuGH/unmark/internal/health"
	xlog "github.com/ManuGH/unmark/internal/log"
	"github.com/ManuGH/unmark/internal/session"
	"github.com/ManuGH/unmark/internal/telemetry"
	"github.com/ManuGH/unmark/internal/version"
)

func runServe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "print version and exit")
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		printVersion(stdout)
		return 0
	}

	// Safe defaults until the config is loaded.
	xlog.Configure(xlog.Config{Level: "info", Service: serviceName, Version: version.Version})
	logger := xlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(*configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().Err(err).
			Str(xlog.FieldEvent, "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
		return 1
	}
	xlog.Reconfigure(xlog.Config{Level: cfg.Logging.Level, Service: serviceName, Version: cfg.Version})
	logger = xlog.WithComponent("daemon")

	source := "env+defaults"
	if *configPath != "" {
		source = "file"
	}
	logger.Info().
		Str(xlog.FieldEvent, "config.loaded").
		Str("source", source).
		Strs("env_keys", loader.ConsumedEnvKeys()).
		Msg("configuration loaded")

	if err := health.PerformStartupChecks(cfg); err != nil {
		logger.Error().Err(err).
			Str(xlog.FieldEvent, "startup.check_failed").
			Msg("startup checks failed, verify configuration and permissions")
		return 1
	}

	tp, err := telemetry.NewProvider(ctx, tracingConfig(cfg))
	if err != nil {
		logger.Error().Err(err).Str(xlog.FieldEvent, "tracing.init_failed").Msg("failed to initialise tracing")
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	client, err := newBackendClient(cfg, nil)
	if err != nil {
		logger.Error().Err(err).Str(xlog.FieldEvent, "backend.invalid").Msg("invalid backend url")
		return 1
	}
	ctrl := session.NewController(client, sessionConfig(cfg))
	defer func() { _ = ctrl.Close() }()

	logger.Info().
		Str(xlog.FieldEvent, "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.API.ListenAddr).
		Str(xlog.FieldBaseURL, maskURL(cfg.Backend.URL)).
		Str(xlog.FieldMethod, cfg.Process.Method).
		Str(xlog.FieldQuality, cfg.Process.Quality).
		Msg("starting unmark")

	holder := config.NewHolder(cfg, loader, *configPath)
	server := api.New(ctrl, apiConfig(cfg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.ListenAndServe(gctx) })
	g.Go(func() error { return ignoreCanceled(holder.Watch(gctx)) })
	g.Go(func() error { return applyReloads(gctx, holder, ctrl) })
	if dir := cfg.Dropzone.WatchDir; dir != "" {
		w, err := dropzone.New(dir, dropzone.DefaultSettle, dropzoneHandler(ctrl, cfg.Dropzone.AutoUpload))
		if err != nil {
			logger.Error().Err(err).Str(xlog.FieldEvent, "dropzone.invalid").Msg("invalid dropzone")
			return 1
		}
		g.Go(func() error { return ignoreCanceled(w.Run(gctx)) })
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Str(xlog.FieldEvent, "daemon.failed").Msg("unmark stopped with error")
		return 1
	}
	logger.Info().Str(xlog.FieldEvent, "shutdown").Msg("server exiting")
	return 0
}
