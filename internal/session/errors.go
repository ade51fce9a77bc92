// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAllowed is returned when a control is disabled in the current state.
	ErrNotAllowed = errors.New("session: action not allowed in current state")
	// ErrStale marks a call whose result was discarded because the session moved on.
	ErrStale = errors.New("session: result discarded, session moved on")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session: controller closed")
	// ErrNoMedia is returned by pointer gestures before media metadata and
	// layout are known.
	ErrNoMedia = errors.New("session: media metadata not loaded")
)

// NotAllowedError names the refused action and the state that refused it.
type NotAllowedError struct {
	Action string
	State  State
	Reason string
}

func (e *NotAllowedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("session: %s not allowed in state %s", e.Action, e.State)
	}
	return fmt.Sprintf("session: %s not allowed in state %s (%s)", e.Action, e.State, e.Reason)
}

func (e *NotAllowedError) Unwrap() error { return ErrNotAllowed }

// IllegalTransitionError reports an event the machine had no edge for.
type IllegalTransitionError struct {
	From   State
	Event  EventKind
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s + %v", e.From, e.Event)
}

func notAllowed(action string, s State, reason string) error {
	return &NotAllowedError{Action: action, State: s, Reason: reason}
}
