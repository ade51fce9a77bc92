// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
)

// MockServer is a configurable stand-in for the processing backend used by
// tests across packages.
type MockServer struct {
	*httptest.Server

	mu          sync.RWMutex
	uploads     map[string][]byte
	processed   []ProcessRequest
	outputs     map[string][]byte
	uploadErr   *mockFailure
	processErr  *mockFailure
	processGate chan struct{}
	seq         atomic.Int64

	uploadCalls  atomic.Int64
	processCalls atomic.Int64
}

type mockFailure struct {
	status int
	body   string
}

// NewMockServer starts a backend that accepts every upload and processes
// every request successfully until told otherwise.
func NewMockServer() *MockServer {
	m := &MockServer{
		uploads: make(map[string][]byte),
		outputs: make(map[string][]byte),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", m.handleUpload)
	mux.HandleFunc("/process", m.handleProcess)
	mux.HandleFunc("/video/", m.handleVideo)
	mux.HandleFunc("/output/", m.handleOutput)
	mux.HandleFunc("/download/", m.handleOutput)
	m.Server = httptest.NewServer(mux)
	return m
}

// FailUpload makes subsequent uploads answer with status and raw body.
func (m *MockServer) FailUpload(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadErr = &mockFailure{status: status, body: body}
}

// FailProcess makes subsequent process calls answer with status and raw body.
func (m *MockServer) FailProcess(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processErr = &mockFailure{status: status, body: body}
}

// Recover clears injected failures.
func (m *MockServer) Recover() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadErr = nil
	m.processErr = nil
}

// HoldProcess blocks process requests until the returned function is called.
func (m *MockServer) HoldProcess() (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.processGate = gate
	m.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Uploaded returns the bytes received for a server filename.
func (m *MockServer) Uploaded(filename string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.uploads[filename]
	return b, ok
}

// ProcessRequests returns every accepted process request in arrival order.
func (m *MockServer) ProcessRequests() []ProcessRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ProcessRequest(nil), m.processed...)
}

// UploadCalls counts requests that reached /upload.
func (m *MockServer) UploadCalls() int64 { return m.uploadCalls.Load() }

// ProcessCalls counts requests that reached /process.
func (m *MockServer) ProcessCalls() int64 { return m.processCalls.Load() }

func (m *MockServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	m.uploadCalls.Add(1)
	if r.Method != http.MethodPost {
		writeMockJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	m.mu.RLock()
	fail := m.uploadErr
	m.mu.RUnlock()
	if fail != nil {
		_, _ = io.Copy(io.Discard, r.Body)
		writeMockRaw(w, fail.status, fail.body)
		return
	}

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		writeMockJSON(w, http.StatusBadRequest, errorResponse{Error: "No file part"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeMockJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	stored := fmt.Sprintf("%d_%s", m.seq.Add(1), header.Filename)
	m.mu.Lock()
	m.uploads[stored] = data
	m.mu.Unlock()

	writeMockJSON(w, http.StatusOK, UploadResponse{Filename: stored, VideoURL: "/video/" + stored})
}

func (m *MockServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	m.processCalls.Add(1)
	var in ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMockJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}

	m.mu.RLock()
	gate := m.processGate
	fail := m.processErr
	_, known := m.uploads[in.Filename]
	m.mu.RUnlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if fail != nil {
		writeMockRaw(w, fail.status, fail.body)
		return
	}
	if in.Filename == "" {
		writeMockJSON(w, http.StatusBadRequest, errorResponse{Error: "filename is required"})
		return
	}
	if !known {
		writeMockJSON(w, http.StatusNotFound, errorResponse{Error: "File not found"})
		return
	}

	out := fmt.Sprintf("processed_%d.mp4", m.seq.Add(1))
	m.mu.Lock()
	m.processed = append(m.processed, in)
	m.outputs[out] = append([]byte("processed:"), m.uploads[in.Filename]...)
	m.mu.Unlock()

	writeMockJSON(w, http.StatusOK, ProcessResponse{
		VideoURL:       "/output/" + out,
		DownloadURL:    "/download/" + out,
		OutputFilename: out,
	})
}

func (m *MockServer) handleVideo(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path[len("/video/"):]
	m.mu.RLock()
	data, ok := m.uploads[name]
	m.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	_, _ = w.Write(data)
}

func (m *MockServer) handleOutput(w http.ResponseWriter, r *http.Request) {
	var name string
	switch {
	case len(r.URL.Path) > len("/output/") && r.URL.Path[:len("/output/")] == "/output/":
		name = r.URL.Path[len("/output/"):]
	default:
		name = r.URL.Path[len("/download/"):]
	}
	m.mu.RLock()
	data, ok := m.outputs[name]
	m.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	_, _ = w.Write(data)
}

func writeMockJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMockRaw(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
