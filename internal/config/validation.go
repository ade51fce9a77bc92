// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/rs/zerolog"

	"github.com/ManuGH/unmark/internal/orchestrator"
)

// Validate checks the resolved configuration and reports every problem.
func Validate(cfg AppConfig) error {
	var errs []error

	u, err := url.Parse(cfg.Backend.URL)
	switch {
	case cfg.Backend.URL == "":
		errs = append(errs, errors.New("backend.url is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("backend.url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		errs = append(errs, fmt.Errorf("backend.url must be an absolute http(s) URL, got %q", cfg.Backend.URL))
	}
	if cfg.Backend.UploadTimeout < 0 {
		errs = append(errs, errors.New("backend.uploadTimeout must not be negative"))
	}

	if cfg.API.ListenAddr == "" {
		errs = append(errs, errors.New("api.listenAddr is required"))
	}
	if cfg.API.RateLimit < 0 {
		errs = append(errs, errors.New("api.rateLimit must not be negative"))
	}

	if cfg.Process.Method != orchestrator.MethodTelea && cfg.Process.Method != orchestrator.MethodNS {
		errs = append(errs, fmt.Errorf("process.method %q is not one of telea, ns", cfg.Process.Method))
	}
	if !slices.Contains(orchestrator.QualityPresets, cfg.Process.Quality) {
		errs = append(errs, fmt.Errorf("process.quality %q is not one of %v", cfg.Process.Quality, orchestrator.QualityPresets))
	}

	if cfg.Dropzone.AutoUpload && cfg.Dropzone.WatchDir == "" {
		errs = append(errs, errors.New("dropzone.autoUpload requires dropzone.watchDir"))
	}

	if cfg.Compare.SyncEpsilon <= 0 {
		errs = append(errs, errors.New("compare.syncEpsilon must be positive"))
	}

	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Exporter != "grpc" && cfg.Tracing.Exporter != "http" {
			errs = append(errs, fmt.Errorf("tracing.exporter %q is not one of grpc, http", cfg.Tracing.Exporter))
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, errors.New("tracing.endpoint is required when tracing is enabled"))
		}
	}
	if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
		errs = append(errs, errors.New("tracing.samplingRate must be within [0,1]"))
	}

	return errors.Join(errs...)
}
