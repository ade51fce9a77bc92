// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads unmark settings with precedence ENV > file > defaults.
package config

import "time"

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	Backend  BackendConfig  `yaml:"backend"`
	API      APIConfig      `yaml:"api"`
	Process  ProcessConfig  `yaml:"process"`
	Dropzone DropzoneConfig `yaml:"dropzone"`
	Download DownloadConfig `yaml:"download"`
	Compare  CompareConfig  `yaml:"compare"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// BackendConfig locates the processing service.
type BackendConfig struct {
	URL string `yaml:"url"`
	// UploadTimeout bounds a single upload; zero means no limit.
	UploadTimeout time.Duration `yaml:"uploadTimeout"`
}

// APIConfig configures the control API.
type APIConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	// RateLimit is requests per minute per client IP; zero disables limiting.
	RateLimit int `yaml:"rateLimit"`
}

// ProcessConfig holds the options sent with every process request.
type ProcessConfig struct {
	Method        string `yaml:"method"`
	Quality       string `yaml:"quality"`
	RequireRegion bool   `yaml:"requireRegion"`
}

// DropzoneConfig configures the watch folder.
type DropzoneConfig struct {
	WatchDir   string `yaml:"watchDir"`
	AutoUpload bool   `yaml:"autoUpload"`
}

// DownloadConfig configures where processed files are saved.
type DownloadConfig struct {
	Dir string `yaml:"dir"`
}

// CompareConfig tunes comparison playback.
type CompareConfig struct {
	SyncEpsilon  float64       `yaml:"syncEpsilon"`
	SyncInterval time.Duration `yaml:"syncInterval"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}
