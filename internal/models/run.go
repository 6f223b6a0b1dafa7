package models

import "time"

type RunConfig struct {
	ExperimentID *string           `json:"experiment_id,omitempty"`
	RunName      *string           `json:"run_name,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
	Description  *string           `json:"description,omitempty"`
}

// ProjectRunConfig describes the MLflow run registered for a project execution.
type ProjectRunConfig struct {
	ProjectURI   string            `json:"project_uri"`
	ExperimentID string            `json:"experiment_id"`
	EntryPoint   string            `json:"entry_point"`
	Version      string            `json:"version,omitempty"`
	WorkDir      string            `json:"work_dir"`
	Parameters   map[string]string `json:"parameters,omitempty"`
	Backend      string            `json:"backend"`
}

type RunInfo struct {
	RunID        string            `json:"run_id"`
	ExperimentID string            `json:"experiment_id"`
	RunName      string            `json:"run_name"`
	Status       string            `json:"status"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      *time.Time        `json:"end_time,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
	Description  string            `json:"description,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusScheduled RunStatus = "SCHEDULED"
	RunStatusFinished  RunStatus = "FINISHED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusKilled    RunStatus = "KILLED"
)

// IsTerminated reports whether the MLflow run has ended.
func (s RunStatus) IsTerminated() bool {
	return s == RunStatusFinished || s == RunStatusFailed || s == RunStatusKilled
}
