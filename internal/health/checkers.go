// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Backend probe thresholds: a slower answer is degraded, no answer within
// backendTimeout is unhealthy.
const (
	backendSlow    = 2 * time.Second
	backendTimeout = 5 * time.Second
)

// BackendChecker probes the processing backend root. Any HTTP answer below
// 500 counts as reachable.
type BackendChecker struct {
	baseURL string
	client  *http.Client
}

// NewBackendChecker creates a checker for the backend at baseURL.
func NewBackendChecker(baseURL string) *BackendChecker {
	return &BackendChecker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: backendTimeout},
	}
}

func (c *BackendChecker) Name() string { return "backend" }

func (c *BackendChecker) Check(ctx context.Context) CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: "backend unreachable", Message: err.Error()}
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return CheckResult{Status: StatusUnhealthy, Error: fmt.Sprintf("backend answered HTTP %d", resp.StatusCode)}
	}
	if elapsed > backendSlow {
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("slow response (%s)", elapsed.Round(time.Millisecond))}
	}
	return CheckResult{Status: StatusHealthy, Message: "backend reachable"}
}

// DirChecker checks that a directory exists and is writable.
type DirChecker struct {
	name string
	path string
}

// NewDirChecker creates a checker for a writable directory. An empty path
// is reported healthy as not configured.
func NewDirChecker(name, path string) *DirChecker {
	return &DirChecker{name: name, path: path}
}

func (c *DirChecker) Name() string { return c.name }

func (c *DirChecker) Check(context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}
	if err := checkWritableDir(c.path); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: c.path}
	}
	return CheckResult{Status: StatusHealthy, Message: "directory writable"}
}

// FuncChecker adapts a probe function; a non-nil error is unhealthy.
type FuncChecker struct {
	name  string
	probe func(context.Context) error
}

// NewFuncChecker wraps probe under name.
func NewFuncChecker(name string, probe func(context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, probe: probe}
}

func (c *FuncChecker) Name() string { return c.name }

func (c *FuncChecker) Check(ctx context.Context) CheckResult {
	if err := c.probe(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}

func checkWritableDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	f, err := os.CreateTemp(path, ".write_test")
	if err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(filepath.Clean(name))
	return nil
}
