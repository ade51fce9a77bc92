// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyMapper(nw, nh int, dw, dh float64) *Mapper {
	m := NewMapper()
	m.SetNative(nw, nh)
	m.Fit(dw, dh)
	return m
}

func TestMapper_NotReadyNeverConverts(t *testing.T) {
	cases := []struct {
		name   string
		nw, nh int
		dw, dh float64
	}{
		{name: "nothing known"},
		{name: "native only", nw: 1280, nh: 720},
		{name: "display only", dw: 640, dh: 360},
		{name: "zero display height", nw: 1280, nh: 720, dw: 640},
		{name: "zero native width", nh: 720, dw: 640, dh: 360},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := readyMapper(tc.nw, tc.nh, tc.dw, tc.dh)
			require.False(t, m.Ready())

			_, ok := m.ToNativePoint(Point{X: 10, Y: 10})
			assert.False(t, ok)
			_, ok = m.ToDisplayPoint(NativePoint{X: 10, Y: 10})
			assert.False(t, ok)
			r, ok := m.ToNativeRect(Box{X: 1, Y: 1, Width: 5, Height: 5})
			assert.False(t, ok)
			assert.Equal(t, Region{}, r)
			_, ok = m.ToDisplayRect(Region{X: 1, Y: 1, Width: 5, Height: 5})
			assert.False(t, ok)
		})
	}
}

func TestMapper_DragScenarioAtDoubleScale(t *testing.T) {
	m := readyMapper(1280, 720, 640, 360)

	box := Normalize(Point{X: 40, Y: 40}, Point{X: 140, Y: 100})
	r, ok := m.ToNativeRect(box)
	require.True(t, ok)
	assert.Equal(t, Region{X: 80, Y: 80, Width: 200, Height: 120}, r)
}

func TestMapper_IndependentAxes(t *testing.T) {
	// Non-uniform stretch: 4x horizontally, 2x vertically.
	m := readyMapper(1920, 1080, 480, 540)

	p, ok := m.ToNativePoint(Point{X: 10, Y: 10})
	require.True(t, ok)
	assert.Equal(t, NativePoint{X: 40, Y: 20}, p)
}

func TestMapper_RoundsAtConversion(t *testing.T) {
	m := readyMapper(1000, 1000, 300, 300)

	p, ok := m.ToNativePoint(Point{X: 1, Y: 2})
	require.True(t, ok)
	// 1*3.333 = 3.33 -> 3, 2*3.333 = 6.67 -> 7
	assert.Equal(t, NativePoint{X: 3, Y: 7}, p)
}

func TestMapper_RoundTripWithinOnePixel(t *testing.T) {
	layouts := []struct {
		nw, nh int
		dw, dh float64
	}{
		{1280, 720, 640, 360},
		{1920, 1080, 853.5, 480},
		{320, 240, 640, 480},
		{3840, 2160, 391, 220},
		{720, 1280, 333.3, 592.2},
	}
	for _, l := range layouts {
		m := readyMapper(l.nw, l.nh, l.dw, l.dh)
		for x := 0.0; x <= l.dw; x += l.dw / 37 {
			for y := 0.0; y <= l.dh; y += l.dh / 29 {
				n, ok := m.ToNativePoint(Point{X: x, Y: y})
				require.True(t, ok)
				back, ok := m.ToDisplayPoint(n)
				require.True(t, ok)
				assert.LessOrEqual(t, math.Abs(back.X-x), 1.0, "x drift at %v", Point{X: x, Y: y})
				assert.LessOrEqual(t, math.Abs(back.Y-y), 1.0, "y drift at %v", Point{X: x, Y: y})
			}
		}
	}
}

func TestMapper_FitIsIdempotent(t *testing.T) {
	m := readyMapper(1280, 720, 640, 360)
	before := m.Metrics()

	assert.False(t, m.Fit(640, 360))
	assert.False(t, m.Fit(640, 360))
	assert.Equal(t, before, m.Metrics())

	assert.True(t, m.Fit(800, 450))
	assert.Equal(t, 800.0, m.Metrics().DisplayWidth)
}

func TestMapper_SetNativeReplacesSource(t *testing.T) {
	m := readyMapper(1280, 720, 640, 360)
	m.SetNative(1920, 1080)

	got := m.Metrics()
	assert.Equal(t, Metrics{NativeWidth: 1920, NativeHeight: 1080, DisplayWidth: 640, DisplayHeight: 360}, got)

	m.Reset()
	assert.False(t, m.Ready())
	assert.Equal(t, Metrics{}, m.Metrics())
}

func TestMapper_RegionStaysInsideFrame(t *testing.T) {
	layouts := []struct {
		nw, nh int
		dw, dh float64
	}{
		{1280, 720, 640, 360},
		{1919, 1079, 640.5, 359.7},
		{101, 57, 33, 19},
	}
	for _, l := range layouts {
		m := readyMapper(l.nw, l.nh, l.dw, l.dh)
		steps := []float64{0, 0.25, 0.5, 0.75, 1}
		for _, ax := range steps {
			for _, bx := range steps {
				for _, ay := range steps {
					for _, by := range steps {
						box := Normalize(Point{X: ax * l.dw, Y: ay * l.dh}, Point{X: bx * l.dw, Y: by * l.dh})
						r, ok := m.ToNativeRect(box)
						require.True(t, ok)
						assert.GreaterOrEqual(t, r.X, 0)
						assert.GreaterOrEqual(t, r.Y, 0)
						assert.LessOrEqual(t, r.X+r.Width, l.nw)
						assert.LessOrEqual(t, r.Y+r.Height, l.nh)
					}
				}
			}
		}
	}
}

func TestNormalize_AnyDirection(t *testing.T) {
	want := Box{X: 10, Y: 20, Width: 30, Height: 40}
	assert.Equal(t, want, Normalize(Point{X: 10, Y: 20}, Point{X: 40, Y: 60}))
	assert.Equal(t, want, Normalize(Point{X: 40, Y: 60}, Point{X: 10, Y: 20}))
	assert.Equal(t, want, Normalize(Point{X: 40, Y: 20}, Point{X: 10, Y: 60}))
	assert.Equal(t, want, Normalize(Point{X: 10, Y: 60}, Point{X: 40, Y: 20}))
}

func TestRegion_Empty(t *testing.T) {
	assert.True(t, Region{}.Empty())
	assert.True(t, Region{Width: 10}.Empty())
	assert.True(t, Region{Width: 10, Height: -1}.Empty())
	assert.False(t, Region{Width: 1, Height: 1}.Empty())
	assert.Equal(t, "200x120+80+80", Region{X: 80, Y: 80, Width: 200, Height: 120}.String())
}
