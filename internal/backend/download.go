// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	xglog "github.com/ManuGH/unmark/internal/log"
)

// Download fetches a backend-provided URL into dir/name. The file appears
// atomically: readers never observe a partially written result.
func (c *Client) Download(ctx context.Context, rawURL, dir, name string) (string, int64, error) {
	const op = "download"

	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", 0, fmt.Errorf("download: invalid file name %q", name)
	}
	target, err := c.Resolve(rawURL)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", 0, fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, fmt.Errorf("build download request: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return "", 0, transportError(op, err)
	}
	defer func() {
		if cerr := res.Body.Close(); cerr != nil {
			c.logger.Debug().Err(cerr).Str(xglog.FieldOperation, op).Msg("close response body")
		}
	}()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", 0, serverError(op, res.StatusCode, http.StatusText(res.StatusCode))
	}

	// renameio handles: temp file creation, fsync, atomic rename, cleanup on error
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o640))
	if err != nil {
		return "", 0, fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			c.logger.Debug().Err(err).Str(xglog.FieldPath, path).Msg("cleanup pending download")
		}
	}()

	n, err := io.Copy(pending, res.Body)
	if err != nil {
		return "", n, transportError(op, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", n, fmt.Errorf("atomically replace %s: %w", path, err)
	}

	c.logger.Info().
		Str(xglog.FieldEvent, "download.complete").
		Str(xglog.FieldPath, path).
		Int64("bytes", n).
		Msg("processed video saved")
	return path, n, nil
}
