// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/unmark/internal/backend"
	"github.com/ManuGH/unmark/internal/geometry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func newClient(t *testing.T, mock *backend.MockServer) *backend.Client {
	t.Helper()
	c, err := backend.New(mock.URL, backend.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	require.NoError(t, err)
	return c
}

func collect[T any](t *testing.T, s *Stream[T]) []Event[T] {
	t.Helper()
	var out []Event[T]
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("stream did not terminate")
		}
	}
}

func TestUpload_NilFileFailsWithoutNetwork(t *testing.T) {
	mock := backend.NewMockServer()
	defer mock.Close()

	events := collect(t, NewUploader(newClient(t, mock)).Upload(context.Background(), nil))
	require.Len(t, events, 1)
	require.Equal(t, EventFailure, events[0].Kind)
	assert.Equal(t, KindUserInput, events[0].Err.Kind)
	assert.Equal(t, ReasonNoFile, events[0].Err.Reason)
	assert.Equal(t, MsgSelectVideo, events[0].Err.Error())
	assert.Zero(t, mock.UploadCalls())
}

func TestUpload_ProgressIsMonotonicThenSuccess(t *testing.T) {
	mock := backend.NewMockServer()
	defer mock.Close()

	payload := bytes.Repeat([]byte("x"), 256*1024)
	events := collect(t, NewUploader(newClient(t, mock)).Upload(context.Background(), BytesFile("a.mp4", payload)))

	require.GreaterOrEqual(t, len(events), 2)
	last := events[len(events)-1]
	require.Equal(t, EventSuccess, last.Kind)
	assert.Equal(t, "1_a.mp4", last.Result.ServerFilename)
	assert.Equal(t, "/video/1_a.mp4", last.Result.PlayableURL)

	prev := -1
	for _, ev := range events[:len(events)-1] {
		require.Equal(t, EventProgress, ev.Kind)
		assert.Greater(t, ev.Percent, prev, "percentages must strictly increase")
		assert.GreaterOrEqual(t, ev.Percent, 0)
		assert.LessOrEqual(t, ev.Percent, 100)
		prev = ev.Percent
	}
	assert.Equal(t, 0, events[0].Percent)
	for _, ev := range events {
		if ev.Terminal() {
			assert.Equal(t, last, ev, "exactly one terminal event")
		}
	}
}

func TestUpload_UnknownSizeEmitsNoProgress(t *testing.T) {
	mock := backend.NewMockServer()
	defer mock.Close()

	f := &File{Name: "a.mp4", Size: -1, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader([]byte("abc"))), nil
	}}
	events := collect(t, NewUploader(newClient(t, mock)).Upload(context.Background(), f))
	require.Len(t, events, 1)
	assert.Equal(t, EventSuccess, events[0].Kind)
}

func TestUpload_FailureTaxonomy(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		reason  string
		message string
		target  error
	}{
		{"server message verbatim", http.StatusBadRequest, `{"error":"Unsupported file type"}`, KindServer, ReasonServer, "Unsupported file type", ErrServer},
		{"server without text", http.StatusInternalServerError, `{}`, KindServer, ReasonServer, MsgUploadFailed, ErrServer},
		{"non json body", http.StatusBadGateway, `<html>bad gateway</html>`, KindProtocol, ReasonMalformed, MsgInvalid, ErrProtocol},
		{"success without filename", http.StatusOK, `{"videoUrl":"/video/x"}`, KindProtocol, ReasonMalformed, MsgInvalid, ErrProtocol},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := backend.NewMockServer()
			defer mock.Close()
			mock.FailUpload(tc.status, tc.body)

			_, err := NewUploader(newClient(t, mock)).Upload(context.Background(), BytesFile("a.mp4", []byte("abc"))).Wait(context.Background())
			require.Error(t, err)
			f, ok := AsFailure(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, f.Kind)
			assert.Equal(t, tc.reason, f.Reason)
			assert.Equal(t, tc.message, f.Error())
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestUpload_TransportFailure(t *testing.T) {
	mock := backend.NewMockServer()
	c := newClient(t, mock)
	mock.Close()

	_, err := NewUploader(c).Upload(context.Background(), BytesFile("a.mp4", []byte("abc"))).Wait(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, backend.ErrTransport)
	assert.Equal(t, MsgNetwork, err.Error())
}

func TestUpload_OpenFailure(t *testing.T) {
	mock := backend.NewMockServer()
	defer mock.Close()

	f := &File{Name: "a.mp4", Size: 3, Open: func() (io.ReadCloser, error) { return nil, os.ErrPermission }}
	_, err := NewUploader(newClient(t, mock)).Upload(context.Background(), f).Wait(context.Background())
	require.ErrorIs(t, err, ErrUserInput)
	require.ErrorIs(t, err, os.ErrPermission)
	assert.Zero(t, mock.UploadCalls())
}

func TestProcess_RejectsWithoutNetwork(t *testing.T) {
	mock := backend.NewMockServer()
	defer mock.Close()
	p := NewProcessor(newClient(t, mock))

	empty := geometry.Region{X: 10, Y: 10}
	cases := []struct {
		name   string
		req    Request
		reason string
		msg    string
	}{
		{"missing upload", Request{Region: &geometry.Region{Width: 1, Height: 1}}, ReasonMissingUpload, MsgUploadFirst},
		{"nil region", Request{Filename: "1_a.mp4", RequireRegion: true}, ReasonMissingRegion, MsgDrawRegion},
		{"empty region", Request{Filename: "1_a.mp4", Region: &empty, RequireRegion: true}, ReasonMissingRegion, MsgDrawRegion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events := collect(t, p.Process(context.Background(), tc.req))
			require.Len(t, events, 1)
			require.Equal(t, EventFailure, events[0].Kind)
			assert.Equal(t, KindUserInput, events[0].Err.Kind)
			assert.Equal(t, tc.reason, events[0].Err.Reason)
			assert.Equal(t, tc.msg, events[0].Err.Message)
		})
	}
	assert.Zero(t, mock.ProcessCalls())
}

func TestProcess_SendsRegionAndDefaults(t *testing.T) {
	mock := backend.NewMockServer()
	defer mock.Close()
	c := newClient(t, mock)

	up, err := NewUploader(c).Upload(context.Background(), BytesFile("a.mp4", []byte("abc"))).Wait(context.Background())
	require.NoError(t, err)

	region := geometry.Region{X: 160, Y: 160, Width: 400, Height: 240}
	events := collect(t, NewProcessor(c).Process(context.Background(), Request{
		Filename:      up.ServerFilename,
		Region:        &region,
		RequireRegion: true,
	}))
	require.Len(t, events, 1, "process emits no progress")
	require.Equal(t, EventSuccess, events[0].Kind)
	assert.Equal(t, ProcessResult{
		ResultPlayableURL: "/output/processed_2.mp4",
		DownloadURL:       "/download/processed_2.mp4",
		DownloadFilename:  "processed_2.mp4",
	}, events[0].Result)

	reqs := mock.ProcessRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, backend.ProcessRequest{
		Filename: up.ServerFilename,
		ROI:      &backend.ROI{X: 160, Y: 160, Width: 400, Height: 240},
		Method:   DefaultMethod,
		Quality:  DefaultQuality,
	}, reqs[0])
}

func TestProcess_ServerErrorVerbatim(t *testing.T) {
	mock := backend.NewMockServer()
	defer mock.Close()
	mock.FailProcess(http.StatusInternalServerError, `{"error":"ffmpeg exited with status 1"}`)

	_, err := NewProcessor(newClient(t, mock)).Process(context.Background(), Request{Filename: "1_a.mp4", Method: MethodNS, Quality: "fast"}).Wait(context.Background())
	require.ErrorIs(t, err, ErrServer)
	assert.Equal(t, "ffmpeg exited with status 1", err.Error())
	f, _ := AsFailure(err)
	assert.Equal(t, http.StatusInternalServerError, f.Status)
}

func TestProcess_FailureTaxonomy(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		reason  string
		message string
		target  error
	}{
		{"server message verbatim", http.StatusBadRequest, `{"error":"ROI outside frame"}`, KindServer, ReasonServer, "ROI outside frame", ErrServer},
		{"server without text", http.StatusInternalServerError, `{}`, KindServer, ReasonServer, MsgProcessFailed, ErrServer},
		{"non json error body", http.StatusBadGateway, `<html>bad gateway</html>`, KindProtocol, ReasonMalformed, MsgInvalid, ErrProtocol},
		{"non json success body", http.StatusOK, `processing done`, KindProtocol, ReasonMalformed, MsgInvalid, ErrProtocol},
		{"success without urls", http.StatusOK, `{"outputFilename":"x.mp4"}`, KindProtocol, ReasonMalformed, MsgInvalid, ErrProtocol},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := backend.NewMockServer()
			defer mock.Close()
			mock.FailProcess(tc.status, tc.body)

			region := geometry.Region{X: 1, Y: 1, Width: 10, Height: 10}
			_, err := NewProcessor(newClient(t, mock)).Process(context.Background(), Request{Filename: "1_a.mp4", Region: &region}).Wait(context.Background())
			require.Error(t, err)
			f, ok := AsFailure(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, f.Kind)
			assert.Equal(t, tc.reason, f.Reason)
			assert.Equal(t, tc.message, f.Error())
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestStream_ProgressClampedAndDeduplicated(t *testing.T) {
	s := newStream[int]()
	assert.True(t, s.progress(-5))
	assert.False(t, s.progress(0))
	assert.True(t, s.progress(40))
	assert.False(t, s.progress(30))
	assert.True(t, s.progress(250))
	s.succeed(7)
	s.fail(NewUserInput(ReasonNoFile, MsgSelectVideo))
	assert.False(t, s.progress(100))

	var pcts []int
	var terminals int
	for ev := range s.Events() {
		if ev.Terminal() {
			terminals++
			assert.Equal(t, 7, ev.Result)
			continue
		}
		pcts = append(pcts, ev.Percent)
	}
	assert.Equal(t, []int{0, 40, 100}, pcts)
	assert.Equal(t, 1, terminals)
}

func TestStream_WaitHonoursContext(t *testing.T) {
	s := newStream[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClassify_PassesFailureThrough(t *testing.T) {
	in := NewUserInput(ReasonMissingRegion, MsgDrawRegion)
	assert.Same(t, in, classify(in, MsgProcessFailed))
	assert.Equal(t, KindTransport, classify(errors.New("boom"), MsgProcessFailed).Kind)
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.MOV")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))

	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "clip.MOV", f.Name)
	assert.EqualValues(t, 4, f.Size)
	assert.True(t, Allowed(f.Name))
	assert.False(t, Allowed("notes.txt"))

	_, err = OpenFile(dir)
	require.Error(t, err)
	_, err = OpenFile(filepath.Join(dir, "missing.mp4"))
	require.Error(t, err)
}

func TestOpenVideo(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "clip.webm")
	require.NoError(t, os.WriteFile(good, []byte("data"), 0o600))
	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("data"), 0o600))

	f, err := OpenVideo(good)
	require.NoError(t, err)
	assert.Equal(t, "clip.webm", f.Name)

	_, err = OpenVideo(bad)
	require.ErrorIs(t, err, ErrUserInput)
	fail, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUnsupported, fail.Reason)

	_, err = OpenVideo(filepath.Join(dir, "missing.mp4"))
	require.ErrorIs(t, err, ErrUserInput)
	require.ErrorIs(t, err, os.ErrNotExist)
}
