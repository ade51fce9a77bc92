// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

// Machine holds the current state. It is not safe for concurrent use; the
// Controller serializes access.
type Machine struct {
	state State
}

// NewMachine returns a machine in Idle.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Can reports whether ev would be accepted now.
func (m *Machine) Can(ev EventKind) bool {
	d, ok := DecisionFor(m.state, ev)
	return ok && d.Allowed
}

// Dispatch applies ev. An event the tables do not allow is an invariant
// breach: the machine moves to Failed and an error is returned.
func (m *Machine) Dispatch(ev EventKind) (Transition, error) {
	decision, ok := DecisionFor(m.state, ev)
	if !ok || !decision.Allowed {
		return illegalTransition(m, m.state, ev)
	}
	tr, ok := TransitionFor(m.state, ev)
	if !ok {
		return illegalTransition(m, m.state, ev)
	}
	m.state = tr.To
	return tr, nil
}
