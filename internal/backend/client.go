// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package backend is the HTTP client for the remote upload and processing
// endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	xglog "github.com/ManuGH/unmark/internal/log"
)

// maxResponseBytes caps JSON responses; both endpoints return tiny objects.
const maxResponseBytes = 1 << 20

// Client talks to the remote backend. URLs returned by the backend are
// treated as opaque strings.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used
// as is, without tracing instrumentation.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the backend rooted at base. The default transport
// propagates trace context. No client-wide timeout is set: processing is
// long-running and callers bound requests through their context.
func New(base string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(base), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http(s), got %q", base)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger: xglog.WithComponent("backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Resolve turns a backend-provided URL into an absolute one. Relative paths
// are joined to the backend root.
func (c *Client) Resolve(raw string) (string, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	root := *c.base
	if !strings.HasSuffix(root.Path, "/") {
		root.Path += "/"
	}
	return root.ResolveReference(&url.URL{Path: strings.TrimPrefix(ref.Path, "/"), RawQuery: ref.RawQuery}).String(), nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// Upload sends body as a single multipart field. When size is known (>= 0)
// the request carries a Content-Length and progress reports every chunk
// written; with an unknown size no progress is reported.
func (c *Client) Upload(ctx context.Context, name string, body io.Reader, size int64, progress ProgressFunc) (UploadResponse, error) {
	const op = "upload"

	var head bytes.Buffer
	mw := multipart.NewWriter(&head)
	if _, err := mw.CreateFormFile(UploadField, name); err != nil {
		return UploadResponse{}, fmt.Errorf("build multipart header: %w", err)
	}
	headLen := head.Len()
	if err := mw.Close(); err != nil {
		return UploadResponse{}, fmt.Errorf("build multipart trailer: %w", err)
	}
	raw := head.Bytes()
	preamble, trailer := raw[:headLen], raw[headLen:]

	total := int64(-1)
	if size >= 0 {
		total = int64(len(preamble)) + size + int64(len(trailer))
	}

	var reader io.Reader = io.MultiReader(bytes.NewReader(preamble), body, bytes.NewReader(trailer))
	if total >= 0 && progress != nil {
		reader = &countingReader{r: reader, total: total, fn: progress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload"), reader)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if total >= 0 {
		req.ContentLength = total
	}

	var out UploadResponse
	if err := c.do(req, op, &out); err != nil {
		return UploadResponse{}, err
	}
	if out.Filename == "" {
		return UploadResponse{}, badResponse(op, http.StatusOK, nil, errors.New("missing filename"))
	}
	return out, nil
}

// Process submits a processing request and waits for the result.
func (c *Client) Process(ctx context.Context, in ProcessRequest) (ProcessResponse, error) {
	const op = "process"

	payload, err := json.Marshal(in)
	if err != nil {
		return ProcessResponse{}, fmt.Errorf("encode process request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/process"), bytes.NewReader(payload))
	if err != nil {
		return ProcessResponse{}, fmt.Errorf("build process request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var out ProcessResponse
	if err := c.do(req, op, &out); err != nil {
		return ProcessResponse{}, err
	}
	if out.VideoURL == "" && out.DownloadURL == "" {
		return ProcessResponse{}, badResponse(op, http.StatusOK, nil, errors.New("missing result urls"))
	}
	return out, nil
}

// do executes req and decodes a JSON body into out. The body is parsed
// before the status is inspected: an unparseable body is a protocol error
// whatever the status, so no server-authored text is invented.
func (c *Client) do(req *http.Request, op string, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer func() {
		if cerr := res.Body.Close(); cerr != nil {
			c.logger.Debug().Err(cerr).Str(xglog.FieldOperation, op).Msg("close response body")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return transportError(op, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e errorResponse
		if err := json.Unmarshal(data, &e); err != nil {
			return badResponse(op, res.StatusCode, data, err)
		}
		c.logger.Debug().
			Str(xglog.FieldOperation, op).
			Int(xglog.FieldStatus, res.StatusCode).
			Str("error", e.Error).
			Msg("backend rejected request")
		return serverError(op, res.StatusCode, e.Error)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return badResponse(op, res.StatusCode, data, err)
	}
	return nil
}

type countingReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    ProgressFunc
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.sent += int64(n)
		cr.fn(cr.sent, cr.total)
	}
	return n, err
}
