// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"

	"github.com/ManuGH/unmark/internal/orchestrator"
)

// Defaults returns the configuration used when neither file nor environment
// sets a value.
func Defaults() AppConfig {
	return AppConfig{
		Backend: BackendConfig{
			URL: "http://127.0.0.1:5000",
		},
		API: APIConfig{
			ListenAddr: "127.0.0.1:8088",
			RateLimit:  600,
		},
		Process: ProcessConfig{
			Method:        orchestrator.DefaultMethod,
			Quality:       orchestrator.DefaultQuality,
			RequireRegion: true,
		},
		Download: DownloadConfig{
			Dir: ".",
		},
		Compare: CompareConfig{
			SyncEpsilon:  0.12,
			SyncInterval: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "development",
		},
	}
}
