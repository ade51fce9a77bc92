// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build debug

package session

import "fmt"

func illegalTransition(_ *Machine, from State, ev EventKind) (Transition, error) {
	panic(fmt.Sprintf("illegal transition: %s + %v", from, ev))
}
