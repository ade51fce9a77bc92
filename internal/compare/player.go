// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package compare keeps an original and a processed media timeline locked
// together for before/after inspection.
package compare

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/unmark/internal/geometry"
	xlog "github.com/ManuGH/unmark/internal/log"
	"github.com/ManuGH/unmark/internal/metrics"
)

const (
	// DefaultEpsilon is the drift in seconds tolerated before the follower
	// is snapped to the leader.
	DefaultEpsilon = 0.12
	// DefaultReveal shows half of each layer.
	DefaultReveal = 50.0
	// DefaultInterval approximates the media timeupdate cadence.
	DefaultInterval = 250 * time.Millisecond
)

// Option configures a Player.
type Option func(*Player)

// WithEpsilon overrides the drift threshold. Non-positive values are ignored.
func WithEpsilon(seconds float64) Option {
	return func(p *Player) {
		if seconds > 0 {
			p.epsilon = seconds
		}
	}
}

// State is a point-in-time view of the player.
type State struct {
	Playing      bool    `json:"playing"`
	Ended        bool    `json:"ended"`
	LeaderTime   float64 `json:"processedTime"`
	FollowerTime float64 `json:"originalTime"`
	Reveal       float64 `json:"reveal"`
}

// Player drives two media. The processed media leads and is audible; the
// original follows and stays muted.
type Player struct {
	mu       sync.Mutex
	leader   Media
	follower Media
	epsilon  float64
	reveal   float64
	logger   zerolog.Logger
}

// NewPlayer arms a player with the original and processed media.
func NewPlayer(original, processed Media, opts ...Option) (*Player, error) {
	if original == nil || processed == nil {
		return nil, fmt.Errorf("compare: both media are required")
	}
	p := &Player{
		leader:   processed,
		follower: original,
		epsilon:  DefaultEpsilon,
		reveal:   DefaultReveal,
		logger:   xlog.WithComponent("compare"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.follower.SetMuted(true)
	p.leader.SetMuted(false)
	return p, nil
}

// Epsilon returns the drift threshold in seconds.
func (p *Player) Epsilon() float64 { return p.epsilon }

// Toggle starts both media from the leader's position, or pauses both.
func (p *Player) Toggle(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.leader.Paused() {
		p.pauseLocked()
		p.logger.Debug().Str(xlog.FieldEvent, "compare.pause").Msg("paused")
		return nil
	}
	if err := p.leader.Play(ctx); err != nil {
		return fmt.Errorf("play processed: %w", err)
	}
	p.follower.Seek(p.leader.CurrentTime())
	if err := p.follower.Play(ctx); err != nil {
		p.leader.Pause()
		return fmt.Errorf("play original: %w", err)
	}
	p.follower.SetMuted(true)
	p.logger.Debug().Str(xlog.FieldEvent, "compare.play").Float64("at", p.leader.CurrentTime()).Msg("playing")
	return nil
}

// Pause stops both media.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauseLocked()
}

func (p *Player) pauseLocked() {
	p.leader.Pause()
	p.follower.Pause()
}

// Sync runs one drift check. It returns the observed drift and whether the
// follower was moved. When either media has ended both are paused.
func (p *Player) Sync() (drift float64, resynced bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.leader.Ended() || p.follower.Ended() {
		if !p.leader.Paused() || !p.follower.Paused() {
			p.pauseLocked()
			p.logger.Debug().Str(xlog.FieldEvent, "compare.ended").Msg("media ended, paused both")
		}
		return 0, false
	}
	if p.leader.Paused() || p.follower.Paused() {
		return 0, false
	}

	lead := p.leader.CurrentTime()
	drift = math.Abs(lead - p.follower.CurrentTime())
	metrics.ObserveDrift(drift)
	if drift <= p.epsilon {
		return drift, false
	}
	p.follower.Seek(lead)
	metrics.RecordResync()
	p.logger.Debug().
		Str(xlog.FieldEvent, "compare.resync").
		Float64(xlog.FieldDrift, drift).
		Msg("follower snapped to leader")
	return drift, true
}

// Run calls Sync every interval until ctx is done.
func (p *Player) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sync()
		}
	}
}

// SetReveal sets the visible share of the processed layer, clamped to [0,100].
func (p *Player) SetReveal(percent float64) float64 {
	if math.IsNaN(percent) {
		percent = 0
	}
	percent = min(max(percent, 0), 100)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reveal = percent
	return percent
}

// Reveal returns the current reveal percentage.
func (p *Player) Reveal() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reveal
}

// Clip returns the part of a displayW x displayH box in which the processed
// layer is painted. Both layers keep their full size.
func (p *Player) Clip(displayW, displayH float64) geometry.Box {
	if displayW <= 0 || displayH <= 0 {
		return geometry.Box{}
	}
	return geometry.Box{Width: displayW * p.Reveal() / 100, Height: displayH}
}

// State reports both playheads and the reveal position.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Playing:      !p.leader.Paused(),
		Ended:        p.leader.Ended() || p.follower.Ended(),
		LeaderTime:   p.leader.CurrentTime(),
		FollowerTime: p.follower.CurrentTime(),
		Reveal:       p.reveal,
	}
}
