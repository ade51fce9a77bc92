// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

// Actions is the enablement of every page control for one state.
type Actions struct {
	ChooseFile   bool `json:"chooseFile"`
	Upload       bool `json:"upload"`
	SelectRegion bool `json:"selectRegion"`
	Process      bool `json:"process"`
	Compare      bool `json:"compare"`
	Download     bool `json:"download"`
	NewSession   bool `json:"newSession"`
}

// ActionsFor derives control enablement from the decision table.
func ActionsFor(s State) Actions {
	can := func(ev EventKind) bool {
		d, ok := DecisionFor(s, ev)
		return ok && d.Allowed
	}
	return Actions{
		ChooseFile:   can(EvFileChosen),
		Upload:       can(EvUploadStarted),
		SelectRegion: s == StateReady,
		Process:      can(EvProcessStarted),
		Compare:      s == StateComplete,
		Download:     s == StateComplete,
		NewSession:   can(EvNewSession),
	}
}
