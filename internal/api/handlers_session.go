// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/ManuGH/unmark/internal/orchestrator"
	"github.com/ManuGH/unmark/internal/session"
)

const maxBodyBytes = 64 << 10

type fileRequest struct {
	Path string `json:"path"`
}

// mediaRequest carries the intrinsic resolution of the loaded media.
type mediaRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// layoutRequest carries the rendered size of the media box.
type layoutRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type optionsRequest struct {
	Method  string `json:"method"`
	Quality string `json:"quality"`
}

type downloadResponse struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// decodeJSON strictly decodes a bounded request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// wantsWait reports whether the client asked to block until the call ends.
func wantsWait(r *http.Request) bool {
	v := r.URL.Query().Get("wait")
	return v == "1" || strings.EqualFold(v, "true")
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.NewSession(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleChooseFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	path := strings.TrimSpace(req.Path)
	var f *orchestrator.File
	if path != "" {
		var err error
		if f, err = orchestrator.OpenVideo(path); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := s.ctrl.ChooseFile(f); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	call, err := s.ctrl.StartUpload(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.respondCall(w, r, call)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	call, err := s.ctrl.StartProcess(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.respondCall(w, r, call)
}

// respondCall answers 202 for a started call, or waits for it when the
// client passed ?wait=true.
func (s *Server) respondCall(w http.ResponseWriter, r *http.Request, call *session.Call) {
	if !wantsWait(r) {
		writeJSON(w, http.StatusAccepted, s.ctrl.Snapshot())
		return
	}
	if err := call.Wait(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	var req mediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, r, fmt.Errorf("%w: native size must be positive", errBadRequest))
		return
	}
	if err := s.ctrl.LoadMedia(req.Width, req.Height); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Width < 0 || req.Height < 0 {
		writeError(w, r, fmt.Errorf("%w: display size must not be negative", errBadRequest))
		return
	}
	if err := s.ctrl.Fit(req.Width, req.Height); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	var req optionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	method := strings.ToLower(strings.TrimSpace(req.Method))
	quality := strings.ToLower(strings.TrimSpace(req.Quality))
	if method != "" && method != orchestrator.MethodTelea && method != orchestrator.MethodNS {
		writeError(w, r, fmt.Errorf("%w: unknown method %q", errBadRequest, req.Method))
		return
	}
	if quality != "" && !slices.Contains(orchestrator.QualityPresets, quality) {
		writeError(w, r, fmt.Errorf("%w: unknown quality %q", errBadRequest, req.Quality))
		return
	}
	s.ctrl.SetProcessOptions(method, quality)
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	path, n, err := s.ctrl.Download(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadResponse{Path: path, Bytes: n})
}
