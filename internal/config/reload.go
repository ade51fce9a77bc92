// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xlog "github.com/ManuGH/unmark/internal/log"
)

const reloadDebounce = 500 * time.Millisecond

// Holder keeps the current configuration and reloads it when the file
// changes. A failed reload keeps the previous configuration.
type Holder struct {
	mu      sync.RWMutex
	current AppConfig
	loader  *Loader
	path    string
	logger  zerolog.Logger

	listenersMu sync.RWMutex
	listeners   []chan<- AppConfig
}

// NewHolder wraps an already loaded configuration.
func NewHolder(initial AppConfig, loader *Loader, path string) *Holder {
	return &Holder{
		current: initial,
		loader:  loader,
		path:    path,
		logger:  xlog.WithComponent("config"),
	}
}

// Get returns the current configuration.
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload loads and validates the configuration and swaps it in.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str(xlog.FieldEvent, "config.reload_start").Msg("reloading configuration")
	next, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).Str(xlog.FieldEvent, "config.reload_failed").Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	h.mu.Unlock()

	h.logChanges(prev, next)
	h.notify(next)
	h.logger.Info().Str(xlog.FieldEvent, "config.reload_success").Msg("configuration reloaded successfully")
	return nil
}

// Subscribe registers ch for reload notifications. Sends never block; a
// full channel misses the update.
func (h *Holder) Subscribe(ch chan<- AppConfig) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(cfg AppConfig) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn().Str(xlog.FieldEvent, "config.listener_skip").Msg("skipped notifying listener (channel full)")
		}
	}
}

// Watch reloads on file writes until ctx is done. Without a config file it
// returns immediately.
func (h *Holder) Watch(ctx context.Context) error {
	if h.path == "" {
		h.logger.Info().Str(xlog.FieldEvent, "config.watcher_disabled").Msg("config file watcher disabled (ENV-only configuration)")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(h.path); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	h.logger.Info().Str(xlog.FieldEvent, "config.watcher_started").Str(xlog.FieldPath, h.path).Msg("watching config file for changes")

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xlog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			h.logger.Debug().Str(xlog.FieldEvent, "config.file_changed").Str("op", ev.Op.String()).Msg("config file changed")
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := h.Reload(ctx); err != nil {
					h.logger.Error().Err(err).Str(xlog.FieldEvent, "config.auto_reload_failed").Msg("automatic config reload failed")
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Error().Err(err).Str(xlog.FieldEvent, "config.watcher_error").Msg("config watcher error")
		}
	}
}

func (h *Holder) logChanges(prev, next AppConfig) {
	if prev.Process != next.Process {
		h.logger.Info().
			Str("old_method", prev.Process.Method).
			Str("new_method", next.Process.Method).
			Str("old_quality", prev.Process.Quality).
			Str("new_quality", next.Process.Quality).
			Msg("processing options changed")
	}
	if prev.Logging.Level != next.Logging.Level {
		h.logger.Info().Str("old", prev.Logging.Level).Str("new", next.Logging.Level).Msg("log level changed")
	}
	if prev.Backend.URL != next.Backend.URL || prev.API.ListenAddr != next.API.ListenAddr {
		h.logger.Warn().Msg("backend.url and api.listenAddr changes take effect after restart")
	}
}
