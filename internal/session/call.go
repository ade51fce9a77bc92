// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import "context"

// Call tracks one in-flight upload or process request until the controller
// has applied (or discarded) its result.
type Call struct {
	op   string
	done chan struct{}
	err  error
}

func newCall(op string) *Call {
	return &Call{op: op, done: make(chan struct{})}
}

// Operation is "upload" or "process".
func (c *Call) Operation() string { return c.op }

// Done is closed once the result has been applied.
func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call is applied or ctx ends. The error is the
// call's failure, ErrStale if the result was discarded, or ctx.Err().
func (c *Call) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Call) finish(err error) {
	c.err = err
	close(c.done)
}

// ticket stamps a call with the session generation, the call sequence and
// the state its result is meant to leave.
type ticket struct {
	generation uint64
	seq        uint64
	want       State
	op         string
}
