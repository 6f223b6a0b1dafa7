package models

import "strings"

// RunState is the state of an ADSP job run.
type RunState int

const (
	RunStateUnknown RunState = iota
	RunStateInitial
	RunStateRunning
	RunStateCompleted
	RunStateFailed
	RunStateStopped
)

var runStateNames = map[RunState]string{
	RunStateUnknown:   "unknown",
	RunStateInitial:   "initial",
	RunStateRunning:   "running",
	RunStateCompleted: "completed",
	RunStateFailed:    "failed",
	RunStateStopped:   "stopped",
}

// ParseRunState maps a platform status string onto a RunState. Strings outside
// the known set return RunStateUnknown and false.
func ParseRunState(s string) (RunState, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "initial":
		return RunStateInitial, true
	case "running":
		return RunStateRunning, true
	case "completed":
		return RunStateCompleted, true
	case "failed":
		return RunStateFailed, true
	case "stopped":
		return RunStateStopped, true
	default:
		return RunStateUnknown, false
	}
}

func (s RunState) String() string {
	if name, ok := runStateNames[s]; ok {
		return name
	}
	return runStateNames[RunStateUnknown]
}

// Terminal reports whether no further transitions can happen.
func (s RunState) Terminal() bool {
	return s == RunStateCompleted || s == RunStateFailed || s == RunStateStopped
}

// RunStatus converts the state to the MLflow run status it corresponds to.
func (s RunState) RunStatus() RunStatus {
	switch s {
	case RunStateInitial:
		return RunStatusScheduled
	case RunStateCompleted:
		return RunStatusFinished
	case RunStateFailed:
		return RunStatusFailed
	case RunStateStopped:
		return RunStatusKilled
	default:
		return RunStatusRunning
	}
}
