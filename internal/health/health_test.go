// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/unmark/internal/config"
)

type staticChecker struct {
	name   string
	result CheckResult
}

func (c staticChecker) Name() string                      { return c.name }
func (c staticChecker) Check(context.Context) CheckResult { return c.result }

func TestManager_Aggregation(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []Status
		want      Status
		wantReady bool
	}{
		{"no checkers", nil, StatusHealthy, true},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy, true},
		{"degraded stays ready", []Status{StatusHealthy, StatusDegraded}, StatusDegraded, true},
		{"unhealthy wins", []Status{StatusUnhealthy, StatusDegraded}, StatusUnhealthy, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("v1")
			for i, s := range tt.statuses {
				m.RegisterChecker(staticChecker{name: string(rune('a' + i)), result: CheckResult{Status: s}})
			}
			ready := m.Ready(context.Background())
			assert.Equal(t, tt.want, ready.Status)
			assert.Equal(t, tt.wantReady, ready.Ready)
			assert.Len(t, ready.Checks, len(tt.statuses))

			// Liveness ignores components unless verbose.
			assert.Equal(t, StatusHealthy, m.Health(context.Background(), false).Status)
			assert.Equal(t, tt.want, m.Health(context.Background(), true).Status)
		})
	}
}

func TestServeReady_StatusCodes(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(NewFuncChecker("session", func(context.Context) error { return errors.New("closed") }))

	w := httptest.NewRecorder()
	m.ServeReady(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
	assert.Equal(t, "closed", resp.Checks["session"].Error)

	w = httptest.NewRecorder()
	m.ServeHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBackendChecker(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ok.Close()
	assert.Equal(t, StatusHealthy, NewBackendChecker(ok.URL).Check(context.Background()).Status)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()
	assert.Equal(t, StatusUnhealthy, NewBackendChecker(broken.URL).Check(context.Background()).Status)

	gone := httptest.NewServer(http.NotFoundHandler())
	url := gone.URL
	gone.Close()
	res := NewBackendChecker(url).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "backend unreachable", res.Error)
}

func TestDirChecker(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, StatusHealthy, NewDirChecker("download", dir).Check(context.Background()).Status)
	assert.Equal(t, StatusHealthy, NewDirChecker("download", "").Check(context.Background()).Status)
	assert.Equal(t, StatusUnhealthy, NewDirChecker("download", filepath.Join(dir, "missing")).Check(context.Background()).Status)

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	assert.Equal(t, StatusUnhealthy, NewDirChecker("download", file).Check(context.Background()).Status)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "write probe must clean up")
}

func TestPerformStartupChecks(t *testing.T) {
	cfg := config.Defaults()
	cfg.Download.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Dropzone.WatchDir = filepath.Join(t.TempDir(), "drop")
	require.NoError(t, PerformStartupChecks(cfg))
	assert.DirExists(t, cfg.Download.Dir)
	assert.DirExists(t, cfg.Dropzone.WatchDir)

	cfg.API.ListenAddr = "no-port"
	assert.Error(t, PerformStartupChecks(cfg))
}
