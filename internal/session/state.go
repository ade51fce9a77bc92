// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package session owns the single live state of a page session and the data
// attached to it.
package session

// State is the session lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateFileSelected State = "file_selected"
	StateUploading    State = "uploading"
	StateReady        State = "ready"
	StateProcessing   State = "processing"
	StateComplete     State = "complete"
	StateFailed       State = "failed"
)

// States lists every state in lifecycle order.
var States = []State{
	StateIdle,
	StateFileSelected,
	StateUploading,
	StateReady,
	StateProcessing,
	StateComplete,
	StateFailed,
}

// InFlight reports whether a backend call is outstanding in s.
func (s State) InFlight() bool {
	return s == StateUploading || s == StateProcessing
}

// EventKind is an input to the state machine.
type EventKind int

const (
	EvUnknown EventKind = iota
	EvFileChosen
	EvUploadStarted
	EvUploadSucceeded
	EvUploadFailed
	EvProcessStarted
	EvProcessSucceeded
	EvProcessFailed
	EvNewSession
)

// Events lists every event the machine understands.
var Events = []EventKind{
	EvFileChosen,
	EvUploadStarted,
	EvUploadSucceeded,
	EvUploadFailed,
	EvProcessStarted,
	EvProcessSucceeded,
	EvProcessFailed,
	EvNewSession,
}

func (e EventKind) String() string {
	switch e {
	case EvFileChosen:
		return "file_chosen"
	case EvUploadStarted:
		return "upload_started"
	case EvUploadSucceeded:
		return "upload_succeeded"
	case EvUploadFailed:
		return "upload_failed"
	case EvProcessStarted:
		return "process_started"
	case EvProcessSucceeded:
		return "process_succeeded"
	case EvProcessFailed:
		return "process_failed"
	case EvNewSession:
		return "new_session"
	default:
		return "unknown"
	}
}
