// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	xlog "github.com/ManuGH/unmark/internal/log"
)

// Environment keys.
const (
	EnvBackendURL      = "UNMARK_BACKEND_URL"
	EnvUploadTimeout   = "UNMARK_UPLOAD_TIMEOUT"
	EnvListenAddr      = "UNMARK_LISTEN_ADDR"
	EnvRateLimit       = "UNMARK_RATE_LIMIT"
	EnvMethod          = "UNMARK_METHOD"
	EnvQuality         = "UNMARK_QUALITY"
	EnvRequireRegion   = "UNMARK_REQUIRE_REGION"
	EnvWatchDir        = "UNMARK_WATCH_DIR"
	EnvAutoUpload      = "UNMARK_AUTO_UPLOAD"
	EnvDownloadDir     = "UNMARK_DOWNLOAD_DIR"
	EnvSyncEpsilon     = "UNMARK_SYNC_EPSILON"
	EnvSyncInterval    = "UNMARK_SYNC_INTERVAL"
	EnvTracingEnabled  = "UNMARK_TRACING_ENABLED"
	EnvTracingExporter = "UNMARK_TRACING_EXPORTER"
	EnvTracingEndpoint = "UNMARK_TRACING_ENDPOINT"
	EnvTracingSampling = "UNMARK_TRACING_SAMPLING_RATE"
	EnvEnvironment     = "UNMARK_ENVIRONMENT"
	EnvLogLevel        = "LOG_LEVEL"
)

// parseEnv reads key and converts it with parse. Unset, empty and invalid
// values fall back to def; the chosen source is logged.
func parseEnv[T any](key string, def T, parse func(string) (T, error)) T {
	logger := xlog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok {
		logger.Debug().Str("key", key).Interface("default", def).Str("source", "default").Msg("using default value")
		return def
	}
	if v == "" {
		logger.Debug().Str("key", key).Interface("default", def).Str("source", "default").
			Msg("using default value (environment variable is empty)")
		return def
	}
	out, err := parse(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Interface("default", def).Err(err).
			Msg("invalid value in environment variable, using default")
		return def
	}
	logger.Debug().Str("key", key).Interface("value", out).Str("source", "environment").Msg("using environment variable")
	return out
}

// ParseString reads a string from the environment or returns def.
func ParseString(key, def string) string {
	return parseEnv(key, def, func(s string) (string, error) { return s, nil })
}

// ParseInt reads an integer from the environment or returns def.
func ParseInt(key string, def int) int {
	return parseEnv(key, def, strconv.Atoi)
}

// ParseFloat reads a float from the environment or returns def.
func ParseFloat(key string, def float64) float64 {
	return parseEnv(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// ParseDuration reads a Go duration ("5s") from the environment or returns def.
func ParseDuration(key string, def time.Duration) time.Duration {
	return parseEnv(key, def, time.ParseDuration)
}

// ParseBool accepts true/false, 1/0 and yes/no in any case.
func ParseBool(key string, def bool) bool {
	return parseEnv(key, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", s)
	})
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.Backend.URL = l.envString(EnvBackendURL, cfg.Backend.URL)
	cfg.Backend.UploadTimeout = l.envDuration(EnvUploadTimeout, cfg.Backend.UploadTimeout)

	cfg.API.ListenAddr = l.envString(EnvListenAddr, cfg.API.ListenAddr)
	cfg.API.RateLimit = l.envInt(EnvRateLimit, cfg.API.RateLimit)

	cfg.Process.Method = strings.ToLower(l.envString(EnvMethod, cfg.Process.Method))
	cfg.Process.Quality = strings.ToLower(l.envString(EnvQuality, cfg.Process.Quality))
	cfg.Process.RequireRegion = l.envBool(EnvRequireRegion, cfg.Process.RequireRegion)

	cfg.Dropzone.WatchDir = l.envString(EnvWatchDir, cfg.Dropzone.WatchDir)
	cfg.Dropzone.AutoUpload = l.envBool(EnvAutoUpload, cfg.Dropzone.AutoUpload)
	cfg.Download.Dir = l.envString(EnvDownloadDir, cfg.Download.Dir)

	cfg.Compare.SyncEpsilon = l.envFloat(EnvSyncEpsilon, cfg.Compare.SyncEpsilon)
	cfg.Compare.SyncInterval = l.envDuration(EnvSyncInterval, cfg.Compare.SyncInterval)

	cfg.Logging.Level = l.envString(EnvLogLevel, cfg.Logging.Level)

	cfg.Tracing.Enabled = l.envBool(EnvTracingEnabled, cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = l.envString(EnvTracingExporter, cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = l.envString(EnvTracingEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = l.envFloat(EnvTracingSampling, cfg.Tracing.SamplingRate)
	cfg.Tracing.Environment = l.envString(EnvEnvironment, cfg.Tracing.Environment)
}
