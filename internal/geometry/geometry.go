// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package geometry maps points and rectangles between the rendered display
// box of a media element and the media's intrinsic (native) pixel grid.
package geometry

import "fmt"

// Point is a position in display space, in CSS pixels of the rendered box.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NativePoint is a position in native space (integer media pixels).
type NativePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Box is a rectangle in display space.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Region is a rectangle in native space. It is the value submitted to the
// processing backend.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the region has no positive extent.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Normalize builds the box spanned by two display points regardless of the
// drag direction.
func Normalize(a, b Point) Box {
	x, w := a.X, b.X-a.X
	if w < 0 {
		x, w = b.X, -w
	}
	y, h := a.Y, b.Y-a.Y
	if h < 0 {
		y, h = b.Y, -h
	}
	return Box{X: x, Y: y, Width: w, Height: h}
}
