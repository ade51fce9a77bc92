// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package geometry

import "math"

// Metrics are the two coordinate systems of one media source.
// NativeWidth/NativeHeight are fixed once media metadata is known;
// DisplayWidth/DisplayHeight follow the layout.
type Metrics struct {
	NativeWidth   int     `json:"nativeWidth"`
	NativeHeight  int     `json:"nativeHeight"`
	DisplayWidth  float64 `json:"displayWidth"`
	DisplayHeight float64 `json:"displayHeight"`
}

// NativeKnown reports whether the intrinsic resolution has been loaded.
func (m Metrics) NativeKnown() bool {
	return m.NativeWidth > 0 && m.NativeHeight > 0
}

// Ready reports whether both coordinate systems have positive extent.
func (m Metrics) Ready() bool {
	return m.NativeKnown() && m.DisplayWidth > 0 && m.DisplayHeight > 0
}

// Mapper converts between display and native space with independent
// horizontal and vertical scale factors. Every conversion reports ok=false
// until both native and display dimensions are known.
//
// Mapper is not safe for concurrent use; its owner serializes access.
type Mapper struct {
	m Metrics
}

// NewMapper returns a mapper with no known dimensions.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Metrics returns the current metrics.
func (mp *Mapper) Metrics() Metrics {
	return mp.m
}

// Ready reports whether conversions can be performed.
func (mp *Mapper) Ready() bool {
	return mp.m.Ready()
}

// SetNative records the intrinsic resolution of a newly loaded media source.
// Metrics of a previous source are discarded wholesale; the display box is
// kept because it belongs to the element, not the source.
func (mp *Mapper) SetNative(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	mp.m = Metrics{
		NativeWidth:   width,
		NativeHeight:  height,
		DisplayWidth:  mp.m.DisplayWidth,
		DisplayHeight: mp.m.DisplayHeight,
	}
}

// Fit records the current rendered box. It returns true when the stored
// metrics changed; calling it again with the same layout is a no-op.
func (mp *Mapper) Fit(displayWidth, displayHeight float64) bool {
	if displayWidth < 0 || math.IsNaN(displayWidth) {
		displayWidth = 0
	}
	if displayHeight < 0 || math.IsNaN(displayHeight) {
		displayHeight = 0
	}
	if mp.m.DisplayWidth == displayWidth && mp.m.DisplayHeight == displayHeight {
		return false
	}
	mp.m.DisplayWidth = displayWidth
	mp.m.DisplayHeight = displayHeight
	return true
}

// Reset forgets every dimension.
func (mp *Mapper) Reset() {
	mp.m = Metrics{}
}

// Scale returns the display→native factors.
func (mp *Mapper) Scale() (sx, sy float64, ok bool) {
	if !mp.m.Ready() {
		return 0, 0, false
	}
	return float64(mp.m.NativeWidth) / mp.m.DisplayWidth,
		float64(mp.m.NativeHeight) / mp.m.DisplayHeight,
		true
}

// ToNativePoint maps a display point to the nearest native pixel.
func (mp *Mapper) ToNativePoint(p Point) (NativePoint, bool) {
	sx, sy, ok := mp.Scale()
	if !ok {
		return NativePoint{}, false
	}
	return NativePoint{X: round(p.X * sx), Y: round(p.Y * sy)}, true
}

// ToDisplayPoint maps a native pixel back into the current display box.
func (mp *Mapper) ToDisplayPoint(p NativePoint) (Point, bool) {
	sx, sy, ok := mp.Scale()
	if !ok {
		return Point{}, false
	}
	return Point{X: float64(p.X) / sx, Y: float64(p.Y) / sy}, true
}

// ToNativeRect maps a display box to a native region. Each component is
// rounded independently at conversion time; the result is trimmed so that a
// box inside the display bounds never leaves the native frame.
func (mp *Mapper) ToNativeRect(b Box) (Region, bool) {
	sx, sy, ok := mp.Scale()
	if !ok {
		return Region{}, false
	}
	r := Region{
		X:      round(b.X * sx),
		Y:      round(b.Y * sy),
		Width:  round(b.Width * sx),
		Height: round(b.Height * sy),
	}
	return clampRegion(r, mp.m.NativeWidth, mp.m.NativeHeight), true
}

// ToDisplayRect re-projects a native region into the current display box.
func (mp *Mapper) ToDisplayRect(r Region) (Box, bool) {
	sx, sy, ok := mp.Scale()
	if !ok {
		return Box{}, false
	}
	return Box{
		X:      float64(r.X) / sx,
		Y:      float64(r.Y) / sy,
		Width:  float64(r.Width) / sx,
		Height: float64(r.Height) / sy,
	}, true
}

// ClampPoint keeps p inside the display box.
func (mp *Mapper) ClampPoint(p Point) Point {
	return Point{
		X: clamp(p.X, 0, mp.m.DisplayWidth),
		Y: clamp(p.Y, 0, mp.m.DisplayHeight),
	}
}

func clampRegion(r Region, w, h int) Region {
	if r.X < 0 {
		r.Width += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.Height += r.Y
		r.Y = 0
	}
	if r.X > w {
		r.X = w
	}
	if r.Y > h {
		r.Y = h
	}
	if r.X+r.Width > w {
		r.Width = w - r.X
	}
	if r.Y+r.Height > h {
		r.Height = h - r.Y
	}
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float64) int {
	return int(math.Round(v))
}
