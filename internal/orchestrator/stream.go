// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package orchestrator

import (
	"context"
	"sync"
)

// EventKind tags a stream event.
type EventKind int

const (
	EventProgress EventKind = iota
	EventSuccess
	EventFailure
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventSuccess:
		return "success"
	case EventFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Event is one item of a Stream. Percent is set for progress events, Result
// for success and Err for failure.
type Event[T any] struct {
	Kind    EventKind
	Percent int
	Result  T
	Err     *Failure
}

// Terminal reports whether the event ends the stream.
func (e Event[T]) Terminal() bool { return e.Kind != EventProgress }

// streamBuffer holds every distinct percentage plus the terminal event, so
// producers never block on a slow consumer.
const streamBuffer = 102

// Stream is a finite, non-restartable sequence of progress events closed by
// exactly one terminal event.
type Stream[T any] struct {
	ch   chan Event[T]
	done chan struct{}

	mu       sync.Mutex
	last     int
	closed   bool
	terminal Event[T]
}

func newStream[T any]() *Stream[T] {
	return &Stream[T]{
		ch:   make(chan Event[T], streamBuffer),
		done: make(chan struct{}),
		last: -1,
	}
}

// failed returns a stream that already carries its terminal failure.
func failed[T any](f *Failure) *Stream[T] {
	s := newStream[T]()
	s.fail(f)
	return s
}

// Events yields progress then the terminal event. The channel is closed
// after the terminal event.
func (s *Stream[T]) Events() <-chan Event[T] { return s.ch }

// Done is closed once the terminal event is emitted.
func (s *Stream[T]) Done() <-chan struct{} { return s.done }

// Wait blocks until the terminal event or ctx ends. It does not consume
// Events.
func (s *Stream[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-s.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal.Kind == EventFailure {
		var zero T
		return zero, s.terminal.Err
	}
	return s.terminal.Result, nil
}

// progress emits pct clamped to [0,100]. Values not above the last emitted
// percentage are dropped.
func (s *Stream[T]) progress(pct int) bool {
	pct = min(max(pct, 0), 100)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || pct <= s.last {
		return false
	}
	s.last = pct
	s.ch <- Event[T]{Kind: EventProgress, Percent: pct}
	return true
}

func (s *Stream[T]) succeed(v T) {
	s.finish(Event[T]{Kind: EventSuccess, Result: v})
}

func (s *Stream[T]) fail(f *Failure) {
	s.finish(Event[T]{Kind: EventFailure, Err: f})
}

func (s *Stream[T]) finish(ev Event[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.terminal = ev
	s.ch <- ev
	close(s.ch)
	close(s.done)
}
