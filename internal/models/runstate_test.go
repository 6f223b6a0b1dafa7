package models

import "testing"

// TestParseRunState tests mapping of platform status strings
func TestParseRunState(t *testing.T) {
	cases := map[string]RunState{
		"initial":     RunStateInitial,
		"running":     RunStateRunning,
		"completed":   RunStateCompleted,
		"failed":      RunStateFailed,
		"stopped":     RunStateStopped,
		" Completed ": RunStateCompleted,
		"RUNNING":     RunStateRunning,
	}
	for in, want := range cases {
		got, ok := ParseRunState(in)
		if !ok || got != want {
			t.Fatalf("ParseRunState(%q)=%v,%v, want %v,true", in, got, ok, want)
		}
	}
}

// TestParseRunStateUnknown tests that unmapped strings are not guessed
func TestParseRunStateUnknown(t *testing.T) {
	for _, in := range []string{"", "pending", "succeeded", "complete"} {
		got, ok := ParseRunState(in)
		if ok || got != RunStateUnknown {
			t.Fatalf("ParseRunState(%q)=%v,%v, want unknown,false", in, got, ok)
		}
	}
}

// TestRunStateTerminal tests the terminal set
func TestRunStateTerminal(t *testing.T) {
	terminal := map[RunState]bool{
		RunStateUnknown:   false,
		RunStateInitial:   false,
		RunStateRunning:   false,
		RunStateCompleted: true,
		RunStateFailed:    true,
		RunStateStopped:   true,
	}
	for state, want := range terminal {
		if state.Terminal() != want {
			t.Fatalf("%s.Terminal()=%v, want %v", state, state.Terminal(), want)
		}
	}
}

// TestRunStateRunStatus tests conversion to MLflow statuses
func TestRunStateRunStatus(t *testing.T) {
	if got := RunStateCompleted.RunStatus(); got != RunStatusFinished {
		t.Fatalf("completed -> %s", got)
	}
	if got := RunStateStopped.RunStatus(); got != RunStatusKilled {
		t.Fatalf("stopped -> %s", got)
	}
	if got := RunStateUnknown.RunStatus(); got.IsTerminated() {
		t.Fatalf("unknown must not map to a terminal status, got %s", got)
	}
	if RunState(42).String() != "unknown" {
		t.Fatalf("out of range state should print unknown")
	}
}
