// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package region captures a drag-to-rectangle gesture over the media overlay
// and keeps the committed selection in native media pixels.
package region

import (
	"github.com/ManuGH/unmark/internal/geometry"
)

// State is the gesture state of a Selector.
type State string

const (
	StateIdle     State = "idle"
	StateDragging State = "dragging"
)

// Option configures a Selector.
type Option func(*Selector)

// WithStyle overrides the outline style.
func WithStyle(s Style) Option {
	return func(sel *Selector) { sel.style = s }
}

// Selector turns pointer gestures into a Region. It owns the mapper and the
// overlay surface; callers serialize access.
type Selector struct {
	mapper  *geometry.Mapper
	surface Surface
	style   Style

	state   State
	start   geometry.Point
	pending geometry.Region
	region  geometry.Region
	hasRect bool
}

// NewSelector returns an idle selector drawing onto surface.
func NewSelector(surface Surface, opts ...Option) *Selector {
	s := &Selector{
		mapper:  geometry.NewMapper(),
		surface: surface,
		style:   DefaultStyle,
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the gesture state.
func (s *Selector) State() State { return s.state }

// Metrics returns the current display/native metrics.
func (s *Selector) Metrics() geometry.Metrics { return s.mapper.Metrics() }

// Region returns the committed region. ok is false when nothing has been
// committed or the committed rectangle has no extent.
func (s *Selector) Region() (geometry.Region, bool) {
	if !s.hasRect || s.region.Empty() {
		return geometry.Region{}, false
	}
	return s.region, true
}

// LoadMedia records the intrinsic resolution of a new media source. Any
// selection made on a previous source is dropped. Reporting the resolution
// already loaded keeps the selection and only redraws.
func (s *Selector) LoadMedia(nativeWidth, nativeHeight int) {
	m := s.mapper.Metrics()
	if m.NativeKnown() && m.NativeWidth == nativeWidth && m.NativeHeight == nativeHeight {
		s.redraw()
		return
	}
	s.mapper.SetNative(nativeWidth, nativeHeight)
	s.state = StateIdle
	s.hasRect = false
	s.region = geometry.Region{}
	s.pending = geometry.Region{}
	s.redraw()
}

// Fit records a layout change of the rendered media box and redraws.
func (s *Selector) Fit(displayWidth, displayHeight float64) {
	s.mapper.Fit(displayWidth, displayHeight)
	m := s.mapper.Metrics()
	s.surface.Resize(m.DisplayWidth, m.DisplayHeight)
	s.redraw()
}

// PointerDown starts a drag at p. It is ignored while the media
// dimensions are unknown.
func (s *Selector) PointerDown(p geometry.Point) bool {
	if !s.mapper.Ready() {
		return false
	}
	s.state = StateDragging
	s.start = s.mapper.ClampPoint(p)
	s.pending = geometry.Region{}
	s.redraw()
	return true
}

// PointerMove updates the rectangle spanned by the drag start and p.
func (s *Selector) PointerMove(p geometry.Point) bool {
	if s.state != StateDragging {
		return false
	}
	box := geometry.Normalize(s.start, s.mapper.ClampPoint(p))
	r, ok := s.mapper.ToNativeRect(box)
	if !ok {
		return false
	}
	s.pending = r
	s.redraw()
	return true
}

// PointerUp commits the last computed rectangle.
func (s *Selector) PointerUp() (geometry.Region, bool) {
	if s.state != StateDragging {
		return geometry.Region{}, false
	}
	s.state = StateIdle
	s.region = s.pending
	s.hasRect = true
	s.pending = geometry.Region{}
	s.redraw()
	return s.Region()
}

// Clear drops the region and any drag in progress. Calling it repeatedly is
// equivalent to calling it once.
func (s *Selector) Clear() {
	s.state = StateIdle
	s.hasRect = false
	s.region = geometry.Region{}
	s.pending = geometry.Region{}
	s.redraw()
}

// Reset returns the selector to its freshly constructed state, forgetting
// the media metrics too.
func (s *Selector) Reset() {
	s.mapper.Reset()
	s.surface.Resize(0, 0)
	s.Clear()
}

// Redraw repaints the overlay from the stored native rectangle.
func (s *Selector) Redraw() {
	s.redraw()
}

func (s *Selector) redraw() {
	s.surface.Clear()

	var (
		r    geometry.Region
		show bool
	)
	switch {
	case s.state == StateDragging:
		r, show = s.pending, true
	case s.hasRect:
		r, show = s.region, true
	}

	// The hint invites a first drag: visible once media is known and
	// nothing is drawn or being drawn.
	s.surface.SetHintVisible(s.mapper.Metrics().NativeKnown() && !show)

	if !show || r.Empty() {
		return
	}
	box, ok := s.mapper.ToDisplayRect(r)
	if !ok {
		return
	}
	s.surface.StrokeRect(box, s.style)
}
