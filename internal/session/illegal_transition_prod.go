// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build !debug

package session

func illegalTransition(m *Machine, from State, ev EventKind) (Transition, error) {
	m.state = StateFailed
	return Transition{From: from, To: StateFailed, Event: ev},
		&IllegalTransitionError{From: from, Event: ev, Reason: ForbiddenTransitionReason(from, ev)}
}
