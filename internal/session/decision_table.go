// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

const (
	ForbiddenInFlight      = "call_in_flight"
	ForbiddenOutOfOrder    = "out_of_order"
	ForbiddenRequiresFile  = "requires_file_stage"
	ForbiddenRequiresReady = "requires_ready"
	ForbiddenFailedSticky  = "failed_requires_new_session"
	ForbiddenAlreadyDone   = "already_complete"
	ForbiddenMediaLocked   = "media_locked"
)

// Decision records whether an event is accepted in a state and why not.
type Decision struct {
	Allowed bool
	Reason  string
}

func allowed() Decision        { return Decision{Allowed: true} }
func forbid(r string) Decision { return Decision{Allowed: false, Reason: r} }

// decisionTable defines an explicit decision for every State×Event combination.
var decisionTable = map[State]map[EventKind]Decision{
	StateIdle: {
		EvFileChosen:       allowed(),
		EvUploadStarted:    allowed(),
		EvUploadSucceeded:  forbid(ForbiddenOutOfOrder),
		EvUploadFailed:     forbid(ForbiddenOutOfOrder),
		EvProcessStarted:   forbid(ForbiddenRequiresReady),
		EvProcessSucceeded: forbid(ForbiddenOutOfOrder),
		EvProcessFailed:    forbid(ForbiddenOutOfOrder),
		EvNewSession:       allowed(),
	},
	StateFileSelected: {
		EvFileChosen:       allowed(),
		EvUploadStarted:    allowed(),
		EvUploadSucceeded:  forbid(ForbiddenOutOfOrder),
		EvUploadFailed:     forbid(ForbiddenOutOfOrder),
		EvProcessStarted:   forbid(ForbiddenRequiresReady),
		EvProcessSucceeded: forbid(ForbiddenOutOfOrder),
		EvProcessFailed:    forbid(ForbiddenOutOfOrder),
		EvNewSession:       allowed(),
	},
	StateUploading: {
		EvFileChosen:       forbid(ForbiddenInFlight),
		EvUploadStarted:    forbid(ForbiddenInFlight),
		EvUploadSucceeded:  allowed(),
		EvUploadFailed:     allowed(),
		EvProcessStarted:   forbid(ForbiddenInFlight),
		EvProcessSucceeded: forbid(ForbiddenOutOfOrder),
		EvProcessFailed:    forbid(ForbiddenOutOfOrder),
		EvNewSession:       allowed(),
	},
	StateReady: {
		EvFileChosen:       forbid(ForbiddenRequiresFile),
		EvUploadStarted:    forbid(ForbiddenRequiresFile),
		EvUploadSucceeded:  forbid(ForbiddenOutOfOrder),
		EvUploadFailed:     forbid(ForbiddenOutOfOrder),
		EvProcessStarted:   allowed(),
		EvProcessSucceeded: forbid(ForbiddenOutOfOrder),
		EvProcessFailed:    forbid(ForbiddenOutOfOrder),
		EvNewSession:       allowed(),
	},
	StateProcessing: {
		EvFileChosen:       forbid(ForbiddenInFlight),
		EvUploadStarted:    forbid(ForbiddenInFlight),
		EvUploadSucceeded:  forbid(ForbiddenOutOfOrder),
		EvUploadFailed:     forbid(ForbiddenOutOfOrder),
		EvProcessStarted:   forbid(ForbiddenInFlight),
		EvProcessSucceeded: allowed(),
		EvProcessFailed:    allowed(),
		EvNewSession:       allowed(),
	},
	StateComplete: {
		EvFileChosen:       forbid(ForbiddenAlreadyDone),
		EvUploadStarted:    forbid(ForbiddenAlreadyDone),
		EvUploadSucceeded:  forbid(ForbiddenOutOfOrder),
		EvUploadFailed:     forbid(ForbiddenOutOfOrder),
		EvProcessStarted:   forbid(ForbiddenAlreadyDone),
		EvProcessSucceeded: forbid(ForbiddenOutOfOrder),
		EvProcessFailed:    forbid(ForbiddenOutOfOrder),
		EvNewSession:       allowed(),
	},
	StateFailed: {
		EvFileChosen:       forbid(ForbiddenFailedSticky),
		EvUploadStarted:    forbid(ForbiddenFailedSticky),
		EvUploadSucceeded:  forbid(ForbiddenFailedSticky),
		EvUploadFailed:     forbid(ForbiddenFailedSticky),
		EvProcessStarted:   forbid(ForbiddenFailedSticky),
		EvProcessSucceeded: forbid(ForbiddenFailedSticky),
		EvProcessFailed:    forbid(ForbiddenFailedSticky),
		EvNewSession:       allowed(),
	},
}

// DecisionFor returns the decision for a given state+event.
func DecisionFor(from State, ev EventKind) (Decision, bool) {
	row, ok := decisionTable[from]
	if !ok {
		return Decision{}, false
	}
	d, ok := row[ev]
	return d, ok
}

// ForbiddenTransitionReason documents why a transition is disallowed.
func ForbiddenTransitionReason(from State, ev EventKind) string {
	decision, ok := DecisionFor(from, ev)
	if !ok || decision.Allowed {
		return ""
	}
	return decision.Reason
}
