// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package compare

import (
	"context"
	"sync"
	"time"
)

// Media is a playable timeline. Times are in seconds.
type Media interface {
	CurrentTime() float64
	Seek(t float64)
	Play(ctx context.Context) error
	Pause()
	// Paused is true while not playing, including after the end is reached.
	Paused() bool
	Ended() bool
	SetMuted(muted bool)
	Muted() bool
}

// Clock abstracts time for ClockMedia.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
func SystemClock() Clock { return systemClock{} }

// ClockMedia is a Media whose playhead advances with a Clock. It stands in
// for a media element when no decoder is attached.
type ClockMedia struct {
	mu       sync.Mutex
	clock    Clock
	source   string
	duration float64
	rate     float64
	muted    bool
	playing  bool
	base     float64
	since    time.Time
}

// NewClockMedia returns a paused media at position 0. A duration of zero
// or less means the timeline never ends.
func NewClockMedia(clock Clock, source string, duration float64) *ClockMedia {
	if clock == nil {
		clock = SystemClock()
	}
	return &ClockMedia{clock: clock, source: source, duration: duration, rate: 1}
}

// Source returns the URL the media was created for.
func (m *ClockMedia) Source() string { return m.source }

// SetRate changes the playback speed. Rates at or below zero are ignored.
func (m *ClockMedia) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base = m.positionLocked()
	m.since = m.clock.Now()
	m.rate = rate
}

func (m *ClockMedia) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.positionLocked()
}

func (m *ClockMedia) Seek(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base = m.clampLocked(t)
	m.since = m.clock.Now()
}

func (m *ClockMedia) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.endedLocked() {
		m.base = 0
	} else {
		m.base = m.positionLocked()
	}
	m.since = m.clock.Now()
	m.playing = true
	return nil
}

func (m *ClockMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base = m.positionLocked()
	m.playing = false
}

func (m *ClockMedia) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.playing || m.endedLocked()
}

func (m *ClockMedia) Ended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endedLocked()
}

func (m *ClockMedia) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

func (m *ClockMedia) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *ClockMedia) positionLocked() float64 {
	if !m.playing {
		return m.base
	}
	elapsed := m.clock.Now().Sub(m.since).Seconds() * m.rate
	return m.clampLocked(m.base + elapsed)
}

func (m *ClockMedia) endedLocked() bool {
	return m.duration > 0 && m.positionLocked() >= m.duration
}

func (m *ClockMedia) clampLocked(t float64) float64 {
	if t < 0 {
		return 0
	}
	if m.duration > 0 && t > m.duration {
		return m.duration
	}
	return t
}
