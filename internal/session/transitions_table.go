// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

// Transition is a single allowed edge in the session state machine.
type Transition struct {
	From  State
	To    State
	Event EventKind
}

var transitionsTable = []Transition{
	// File choice
	{From: StateIdle, To: StateFileSelected, Event: EvFileChosen},
	{From: StateFileSelected, To: StateFileSelected, Event: EvFileChosen},

	// Upload
	{From: StateIdle, To: StateUploading, Event: EvUploadStarted},
	{From: StateFileSelected, To: StateUploading, Event: EvUploadStarted},
	{From: StateUploading, To: StateReady, Event: EvUploadSucceeded},
	{From: StateUploading, To: StateIdle, Event: EvUploadFailed},

	// Process
	{From: StateReady, To: StateProcessing, Event: EvProcessStarted},
	{From: StateProcessing, To: StateComplete, Event: EvProcessSucceeded},
	{From: StateProcessing, To: StateReady, Event: EvProcessFailed},

	// Reset
	{From: StateIdle, To: StateIdle, Event: EvNewSession},
	{From: StateFileSelected, To: StateIdle, Event: EvNewSession},
	{From: StateUploading, To: StateIdle, Event: EvNewSession},
	{From: StateReady, To: StateIdle, Event: EvNewSession},
	{From: StateProcessing, To: StateIdle, Event: EvNewSession},
	{From: StateComplete, To: StateIdle, Event: EvNewSession},
	{From: StateFailed, To: StateIdle, Event: EvNewSession},
}

// TransitionFor returns the allowed transition for a given state+event.
func TransitionFor(from State, ev EventKind) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
