// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package region

import (
	"sync"

	"github.com/ManuGH/unmark/internal/geometry"
)

// Style describes how the selection outline is stroked.
type Style struct {
	Color     string    `json:"color"`
	LineWidth float64   `json:"lineWidth"`
	Dash      []float64 `json:"dash,omitempty"`
}

// DefaultStyle is a dashed green outline.
var DefaultStyle = Style{
	Color:     "#22c55e",
	LineWidth: 2,
	Dash:      []float64{6, 4},
}

// Surface is the overlay drawn on top of the media element. The Selector is
// its only writer.
type Surface interface {
	// Resize matches the drawing buffer to the rendered media box.
	Resize(width, height float64)
	Clear()
	StrokeRect(b geometry.Box, s Style)
	SetHintVisible(visible bool)
}

type tee []Surface

// Tee returns a Surface that repeats every call on each of surfaces in order.
func Tee(surfaces ...Surface) Surface {
	return tee(surfaces)
}

func (t tee) Resize(width, height float64) {
	for _, s := range t {
		s.Resize(width, height)
	}
}

func (t tee) Clear() {
	for _, s := range t {
		s.Clear()
	}
}

func (t tee) StrokeRect(b geometry.Box, st Style) {
	for _, s := range t {
		s.StrokeRect(b, st)
	}
}

func (t tee) SetHintVisible(visible bool) {
	for _, s := range t {
		s.SetHintVisible(visible)
	}
}

// Frame is the last picture drawn on a Canvas.
type Frame struct {
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Rect        *geometry.Box `json:"rect,omitempty"`
	Style       *Style        `json:"style,omitempty"`
	HintVisible bool          `json:"hintVisible"`
	Revision    uint64        `json:"revision"`
}

// Canvas is a retained-mode Surface: it keeps the last drawn frame so that a
// remote view can render it. Reads are safe from any goroutine.
type Canvas struct {
	mu    sync.RWMutex
	frame Frame
}

// NewCanvas returns an empty canvas with the hint hidden.
func NewCanvas() *Canvas {
	return &Canvas{}
}

func (c *Canvas) Resize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.Width, c.frame.Height = width, height
	c.frame.Revision++
}

func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.Rect = nil
	c.frame.Style = nil
	c.frame.Revision++
}

func (c *Canvas) StrokeRect(b geometry.Box, s Style) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame.Rect = &b
	c.frame.Style = &s
	c.frame.Revision++
}

func (c *Canvas) SetHintVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame.HintVisible == visible {
		return
	}
	c.frame.HintVisible = visible
	c.frame.Revision++
}

// Frame returns a copy of the last drawn frame.
func (c *Canvas) Frame() Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f := c.frame
	if f.Rect != nil {
		r := *f.Rect
		f.Rect = &r
	}
	if f.Style != nil {
		s := *f.Style
		s.Dash = append([]float64(nil), s.Dash...)
		f.Style = &s
	}
	return f
}
