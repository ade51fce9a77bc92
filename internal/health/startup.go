// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/ManuGH/unmark/internal/config"
	"github.com/ManuGH/unmark/internal/log"
)

// PerformStartupChecks validates the environment before serving.
func PerformStartupChecks(cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")

	if err := os.MkdirAll(cfg.Download.Dir, 0o750); err != nil {
		return fmt.Errorf("download directory: %w", err)
	}
	if err := checkWritableDir(cfg.Download.Dir); err != nil {
		return fmt.Errorf("download directory check failed: %w", err)
	}
	logger.Info().Str("path", cfg.Download.Dir).Msg("download directory is writable")

	if cfg.Dropzone.WatchDir != "" {
		if err := os.MkdirAll(cfg.Dropzone.WatchDir, 0o750); err != nil {
			return fmt.Errorf("dropzone directory: %w", err)
		}
	}

	_, port, err := net.SplitHostPort(cfg.API.ListenAddr)
	if err != nil {
		return fmt.Errorf("invalid API listen address %q: %w", cfg.API.ListenAddr, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid API listen port %q in %q", port, cfg.API.ListenAddr)
	}
	return nil
}
