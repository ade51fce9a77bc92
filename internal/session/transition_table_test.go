// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable_Coverage(t *testing.T) {
	allowedEdges := map[State]map[EventKind]struct{}{}
	for _, tr := range transitionsTable {
		if _, ok := allowedEdges[tr.From]; !ok {
			allowedEdges[tr.From] = map[EventKind]struct{}{}
		}
		if _, exists := allowedEdges[tr.From][tr.Event]; exists {
			t.Fatalf("duplicate transition: %s + %v", tr.From, tr.Event)
		}
		allowedEdges[tr.From][tr.Event] = struct{}{}
	}

	for _, state := range States {
		for _, ev := range Events {
			decision, ok := DecisionFor(state, ev)
			require.True(t, ok, "missing decision for %s + %v", state, ev)
			if _, ok := allowedEdges[state][ev]; ok {
				require.True(t, decision.Allowed, "allowed transition must be marked allowed for %s + %v", state, ev)
				continue
			}
			require.False(t, decision.Allowed, "forbidden transition must be marked forbidden for %s + %v", state, ev)
			require.NotEmpty(t, decision.Reason, "forbidden transition must have reason for %s + %v", state, ev)
		}
	}
}

func TestNewSessionAlwaysReturnsToIdle(t *testing.T) {
	for _, state := range States {
		tr, ok := TransitionFor(state, EvNewSession)
		require.True(t, ok, state)
		assert.Equal(t, StateIdle, tr.To)
	}
}

func TestFailedIsLeftOnlyByNewSession(t *testing.T) {
	for _, ev := range Events {
		_, ok := TransitionFor(StateFailed, ev)
		assert.Equal(t, ev == EvNewSession, ok, ev.String())
	}
	for _, tr := range transitionsTable {
		assert.NotEqual(t, StateFailed, tr.To, "Failed is reached only through illegal transitions")
	}
}

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine()
	steps := []struct {
		ev   EventKind
		want State
	}{
		{EvFileChosen, StateFileSelected},
		{EvFileChosen, StateFileSelected},
		{EvUploadStarted, StateUploading},
		{EvUploadFailed, StateIdle},
		{EvUploadStarted, StateUploading},
		{EvUploadSucceeded, StateReady},
		{EvProcessStarted, StateProcessing},
		{EvProcessFailed, StateReady},
		{EvProcessStarted, StateProcessing},
		{EvProcessSucceeded, StateComplete},
		{EvNewSession, StateIdle},
	}
	for _, step := range steps {
		tr, err := m.Dispatch(step.ev)
		require.NoError(t, err, step.ev.String())
		assert.Equal(t, step.want, tr.To)
		assert.Equal(t, step.want, m.State())
	}
}

func TestActionsFor(t *testing.T) {
	tests := []struct {
		state State
		want  Actions
	}{
		{StateIdle, Actions{ChooseFile: true, Upload: true, NewSession: true}},
		{StateFileSelected, Actions{ChooseFile: true, Upload: true, NewSession: true}},
		{StateUploading, Actions{NewSession: true}},
		{StateReady, Actions{SelectRegion: true, Process: true, NewSession: true}},
		{StateProcessing, Actions{NewSession: true}},
		{StateComplete, Actions{Compare: true, Download: true, NewSession: true}},
		{StateFailed, Actions{NewSession: true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, ActionsFor(tt.state))
		})
	}
}
