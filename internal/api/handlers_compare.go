// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/ManuGH/unmark/internal/compare"
	"github.com/ManuGH/unmark/internal/geometry"
)

type revealRequest struct {
	Percent float64 `json:"percent"`
}

type compareResponse struct {
	compare.State
	Clip geometry.Box `json:"clip"`
}

func (s *Server) handleCompareState(w http.ResponseWriter, r *http.Request) {
	s.writeCompare(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Toggle(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	s.writeCompare(w, r)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req revealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.ctrl.SetReveal(req.Percent); err != nil {
		writeError(w, r, err)
		return
	}
	s.writeCompare(w, r)
}

func (s *Server) writeCompare(w http.ResponseWriter, r *http.Request) {
	clip, err := s.ctrl.Clip()
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := s.ctrl.Player()
	if p == nil {
		writeError(w, r, errNotArmed)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{State: p.State(), Clip: clip})
}
