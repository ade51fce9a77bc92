// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/ManuGH/unmark/internal/api"
	"github.com/ManuGH/unmark/internal/backend"
	"github.com/ManuGH/unmark/internal/config"
	"github.com/ManuGH/unmark/internal/dropzone"
	"github.com/ManuGH/unmark/internal/health"
	xlog "github.com/ManuGH/unmark/internal/log"
	"github.com/ManuGH/unmark/internal/orchestrator"
	"github.com/ManuGH/unmark/internal/session"
	"github.com/ManuGH/unmark/internal/telemetry"
)

const serviceName = "unmark"

func sessionConfig(cfg config.AppConfig) session.Config {
	return session.Config{
		Method:        cfg.Process.Method,
		Quality:       cfg.Process.Quality,
		RequireRegion: cfg.Process.RequireRegion,
		DownloadDir:   cfg.Download.Dir,
		UploadTimeout: cfg.Backend.UploadTimeout,
		SyncEpsilon:   cfg.Compare.SyncEpsilon,
		SyncInterval:  cfg.Compare.SyncInterval,
	}
}

func tracingConfig(cfg config.AppConfig) telemetry.Config {
	return telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Tracing.Environment,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	}
}

func apiConfig(cfg config.AppConfig) api.Config {
	c := api.Config{
		ListenAddr: cfg.API.ListenAddr,
		RateLimit:  cfg.API.RateLimit,
		Version:    cfg.Version,
		Checkers: []health.Checker{
			health.NewBackendChecker(cfg.Backend.URL),
			health.NewDirChecker("download_dir", cfg.Download.Dir),
		},
	}
	if cfg.Tracing.Enabled {
		c.TracingService = serviceName
	}
	return c
}

func newBackendClient(cfg config.AppConfig, hc *http.Client) (*backend.Client, error) {
	var opts []backend.Option
	if hc != nil {
		opts = append(opts, backend.WithHTTPClient(hc))
	}
	return backend.New(cfg.Backend.URL, opts...)
}

// dropzoneHandler selects each settled video for the session and, when
// autoUpload is set, starts its upload.
func dropzoneHandler(ctrl *session.Controller, autoUpload bool) dropzone.Handler {
	logger := xlog.WithComponent("dropzone")
	return func(ctx context.Context, path string) {
		f, err := orchestrator.OpenVideo(path)
		if err != nil {
			logger.Warn().Err(err).Str(xlog.FieldPath, path).Msg("dropped file unusable")
			return
		}
		if err := ctrl.ChooseFile(f); err != nil {
			logger.Info().Err(err).Str(xlog.FieldPath, path).Msg("dropped file not selected")
			return
		}
		if !autoUpload {
			return
		}
		if _, err := ctrl.StartUpload(ctx); err != nil {
			logger.Warn().Err(err).Str(xlog.FieldPath, path).Msg("auto upload not started")
		}
	}
}

// applyReloads pushes reloaded settings into the running session until ctx
// ends.
func applyReloads(ctx context.Context, holder *config.Holder, ctrl *session.Controller) error {
	ch := make(chan config.AppConfig, 1)
	holder.Subscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-ch:
			ctrl.SetProcessOptions(cfg.Process.Method, cfg.Process.Quality)
			xlog.Reconfigure(xlog.Config{Level: cfg.Logging.Level, Service: serviceName, Version: cfg.Version})
		}
	}
}

// ignoreCanceled treats a context cancellation as a clean exit.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
