// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, base string) *Client {
	t.Helper()
	c, err := New(base, WithHTTPClient(&http.Client{Timeout: 2 * time.Second}))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsNonHTTP(t *testing.T) {
	_, err := New("ftp://example.com")
	require.Error(t, err)
	_, err = New("http://example.com/")
	require.NoError(t, err)
}

func TestUpload_SendsSingleMultipartField(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	c := newTestClient(t, mock.URL)

	payload := bytes.Repeat([]byte("frame"), 4096)
	var calls []int64
	var total int64
	res, err := c.Upload(context.Background(), "clip.mp4", bytes.NewReader(payload), int64(len(payload)), func(sent, tot int64) {
		calls = append(calls, sent)
		total = tot
	})
	require.NoError(t, err)
	assert.Equal(t, "1_clip.mp4", res.Filename)
	assert.Equal(t, "/video/1_clip.mp4", res.VideoURL)

	got, ok := mock.Uploaded(res.Filename)
	require.True(t, ok)
	assert.Equal(t, payload, got)

	require.NotEmpty(t, calls)
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i], calls[i-1])
	}
	assert.Equal(t, total, calls[len(calls)-1], "progress must end at the full request size")
}

func TestUpload_UnknownSizeReportsNoProgress(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	c := newTestClient(t, mock.URL)

	called := false
	_, err := c.Upload(context.Background(), "clip.mp4", strings.NewReader("abc"), -1, func(int64, int64) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}

func TestUpload_ErrorClasses(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{name: "server error payload", status: http.StatusBadRequest, body: `{"error":"Unsupported file type"}`, sentinel: ErrServer, message: "Unsupported file type"},
		{name: "html error page", status: http.StatusRequestEntityTooLarge, body: `<html>too large</html>`, sentinel: ErrBadResponse},
		{name: "2xx non json", status: http.StatusOK, body: `OK`, sentinel: ErrBadResponse},
		{name: "2xx without filename", status: http.StatusOK, body: `{"videoUrl":"/video/x"}`, sentinel: ErrBadResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer s.Close()

			c := newTestClient(t, s.URL)
			_, err := c.Upload(context.Background(), "clip.mp4", strings.NewReader("abc"), 3, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)

			var be *Error
			require.ErrorAs(t, err, &be)
			assert.Equal(t, "upload", be.Operation)
			assert.Equal(t, tc.status, be.Status)
			assert.Equal(t, tc.message, be.Message)
		})
	}
}

func TestUpload_TransportFailure(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := s.URL
	s.Close()

	c := newTestClient(t, base)
	_, err := c.Upload(context.Background(), "clip.mp4", strings.NewReader("abc"), 3, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestProcess_PayloadShape(t *testing.T) {
	var got map[string]any
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/process", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ProcessResponse{VideoURL: "/output/p.mp4", DownloadURL: "/download/p.mp4", OutputFilename: "p.mp4"})
	}))
	defer s.Close()
	c := newTestClient(t, s.URL)

	res, err := c.Process(context.Background(), ProcessRequest{
		Filename: "abc123.mp4",
		ROI:      &ROI{X: 80, Y: 80, Width: 200, Height: 120},
		Method:   "telea",
		Quality:  "ultra",
	})
	require.NoError(t, err)
	assert.Equal(t, "p.mp4", res.OutputFilename)

	assert.Equal(t, "abc123.mp4", got["filename"])
	assert.Equal(t, "telea", got["method"])
	assert.Equal(t, "ultra", got["quality"])
	assert.Equal(t, map[string]any{"x": 80.0, "y": 80.0, "width": 200.0, "height": 120.0}, got["roi"])
}

func TestProcess_OmitsROIWhenAbsent(t *testing.T) {
	var raw []byte
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(ProcessResponse{VideoURL: "/output/p.mp4"})
	}))
	defer s.Close()
	c := newTestClient(t, s.URL)

	_, err := c.Process(context.Background(), ProcessRequest{Filename: "a.mp4", Method: "ns", Quality: "fast"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "roi")
}

func TestProcess_ServerMessageVerbatim(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"unsupported codec"}`))
	}))
	defer s.Close()
	c := newTestClient(t, s.URL)

	_, err := c.Process(context.Background(), ProcessRequest{Filename: "a.mp4"})
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.True(t, errors.Is(err, ErrServer))
	assert.Equal(t, "unsupported codec", be.Message)
}

func TestProcess_ContextCancelIsTransport(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	release := mock.HoldProcess()
	defer release()
	c := newTestClient(t, mock.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Process(ctx, ProcessRequest{Filename: "a.mp4"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolve(t *testing.T) {
	c := newTestClient(t, "http://backend.local:5000/app")

	got, err := c.Resolve("/download/p.mp4")
	require.NoError(t, err)
	assert.Equal(t, "http://backend.local:5000/app/download/p.mp4", got)

	got, err = c.Resolve("https://cdn.example.com/p.mp4?sig=1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/p.mp4?sig=1", got)
}

func TestDownload_WritesAtomically(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	c := newTestClient(t, mock.URL)
	ctx := context.Background()

	up, err := c.Upload(ctx, "clip.mp4", strings.NewReader("raw"), 3, nil)
	require.NoError(t, err)
	res, err := c.Process(ctx, ProcessRequest{Filename: up.Filename, Method: "telea", Quality: "ultra"})
	require.NoError(t, err)

	dir := t.TempDir()
	path, n, err := c.Download(ctx, res.DownloadURL, dir, res.OutputFilename)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, res.OutputFilename), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "processed:raw", string(data))
	assert.Equal(t, int64(len(data)), n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestDownload_NotFound(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	c := newTestClient(t, mock.URL)

	_, _, err := c.Download(context.Background(), "/download/missing.mp4", t.TempDir(), "missing.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServer)
}

func TestDownload_StripsDirectoryFromName(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	c := newTestClient(t, mock.URL)

	_, _, err := c.Download(context.Background(), "/download/x.mp4", t.TempDir(), "../")
	require.Error(t, err)
}
