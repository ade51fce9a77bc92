// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"fmt"
	"net/http"

	"github.com/ManuGH/unmark/internal/geometry"
	"github.com/ManuGH/unmark/internal/region"
)

// Pointer phases.
const (
	phaseDown = "down"
	phaseMove = "move"
	phaseUp   = "up"
)

type pointerRequest struct {
	Phase string  `json:"phase"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type pointerResponse struct {
	// Accepted is false when the selector ignored the event.
	Accepted bool             `json:"accepted"`
	Region   *geometry.Region `json:"region,omitempty"`
	Overlay  region.Frame     `json:"overlay"`
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p := geometry.Point{X: req.X, Y: req.Y}

	var (
		resp pointerResponse
		err  error
	)
	switch req.Phase {
	case phaseDown:
		resp.Accepted, err = s.ctrl.PointerDown(p)
	case phaseMove:
		resp.Accepted, err = s.ctrl.PointerMove(p)
	case phaseUp:
		var rg geometry.Region
		rg, resp.Accepted, err = s.ctrl.PointerUp()
		if resp.Accepted {
			resp.Region = &rg
		}
	default:
		err = fmt.Errorf("%w: unknown pointer phase %q", errBadRequest, req.Phase)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp.Overlay = s.ctrl.Canvas().Frame()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearRegion(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.ClearRegion(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}
