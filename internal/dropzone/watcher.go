// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package dropzone turns videos dropped into a directory into file choices.
package dropzone

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xlog "github.com/ManuGH/unmark/internal/log"
	"github.com/ManuGH/unmark/internal/metrics"
	"github.com/ManuGH/unmark/internal/orchestrator"
)

// DefaultSettle is how long a file must stay unchanged before it is handed on.
const DefaultSettle = 750 * time.Millisecond

// Handler receives a settled video file.
type Handler func(ctx context.Context, path string)

// Watcher observes one directory.
type Watcher struct {
	dir     string
	settle  time.Duration
	handler Handler
	logger  zerolog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New returns a watcher for dir. settle <= 0 uses DefaultSettle.
func New(dir string, settle time.Duration, handler Handler) (*Watcher, error) {
	if dir == "" {
		return nil, errors.New("dropzone: directory is required")
	}
	if handler == nil {
		return nil, errors.New("dropzone: handler is required")
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:     filepath.Clean(dir),
		settle:  settle,
		handler: handler,
		logger:  xlog.WithComponent("dropzone").With().Str(xlog.FieldPath, dir).Logger(),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run watches until ctx is done. The directory is created if missing.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return fmt.Errorf("create drop directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", w.dir, err)
	}
	defer w.stopPending()

	w.logger.Info().Str(xlog.FieldEvent, "dropzone.started").Msg("watching drop directory")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str(xlog.FieldEvent, "dropzone.stopped").Msg("drop directory watcher stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.observe(ctx, ev.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			w.logger.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

// observe restarts the settle timer for path.
func (w *Watcher) observe(ctx context.Context, path string) {
	name := filepath.Base(path)
	if name == "" || name[0] == '.' || !orchestrator.Allowed(name) {
		w.mu.Lock()
		_, known := w.pending[path]
		w.mu.Unlock()
		if !known {
			metrics.RecordDropzoneFile("ignored")
			w.logger.Debug().Str(xlog.FieldFilename, name).Msg("ignoring file with unsupported extension")
		}
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() { w.fire(ctx, path) })
}

func (w *Watcher) fire(ctx context.Context, path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return
	}
	metrics.RecordDropzoneFile("accepted")
	w.logger.Info().
		Str(xlog.FieldEvent, "dropzone.file").
		Str(xlog.FieldFilename, filepath.Base(path)).
		Int64("size", info.Size()).
		Msg("video dropped")
	w.handler(ctx, path)
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for p, t := range w.pending {
		t.Stop()
		delete(w.pending, p)
	}
}
