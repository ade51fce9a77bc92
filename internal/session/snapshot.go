// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"github.com/ManuGH/unmark/internal/compare"
	"github.com/ManuGH/unmark/internal/geometry"
	"github.com/ManuGH/unmark/internal/orchestrator"
	"github.com/ManuGH/unmark/internal/region"
)

// FailureView is the last failure as shown to the user.
type FailureView struct {
	Kind    orchestrator.Kind `json:"kind"`
	Reason  string            `json:"reason"`
	Message string            `json:"message"`
}

// Snapshot is a consistent view of the session for rendering.
type Snapshot struct {
	SessionID  string                      `json:"sessionId"`
	Generation uint64                      `json:"generation"`
	State      State                       `json:"state"`
	Actions    Actions                     `json:"actions"`
	File       string                      `json:"file,omitempty"`
	Progress   int                         `json:"progress"`
	Upload     *orchestrator.UploadResult  `json:"upload,omitempty"`
	Result     *orchestrator.ProcessResult `json:"result,omitempty"`
	Region     *geometry.Region            `json:"region,omitempty"`
	Gesture    region.State                `json:"gesture"`
	Metrics    geometry.Metrics            `json:"metrics"`
	Overlay    region.Frame                `json:"overlay"`
	Message    string                      `json:"message,omitempty"`
	Failure    *FailureView                `json:"failure,omitempty"`
	Compare    *compare.State              `json:"compare,omitempty"`
	Clip       *geometry.Box               `json:"clip,omitempty"`
}

// Snapshot returns the current session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		SessionID:  c.id,
		Generation: c.generation,
		State:      c.machine.State(),
		Actions:    ActionsFor(c.machine.State()),
		Progress:   c.progress,
		Gesture:    c.selector.State(),
		Metrics:    c.selector.Metrics(),
		Overlay:    c.canvas.Frame(),
		Message:    c.message,
	}
	if c.closed {
		s.Actions = Actions{}
	}
	if c.file != nil {
		s.File = c.file.Name
	}
	if c.upload != nil {
		u := *c.upload
		s.Upload = &u
	}
	if c.result != nil {
		r := *c.result
		s.Result = &r
	}
	if r, ok := c.selector.Region(); ok {
		s.Region = &r
	}
	if c.failure != nil {
		s.Failure = &FailureView{Kind: c.failure.Kind, Reason: c.failure.Reason, Message: c.failure.Message}
	}
	if c.player != nil {
		st := c.player.State()
		s.Compare = &st
		clip := c.player.Clip(s.Metrics.DisplayWidth, s.Metrics.DisplayHeight)
		s.Clip = &clip
	}
	return s
}
