package models

import "fmt"

// WorkerCommand is the project command ADSP runs for submitted jobs; it reads
// the entry point from the job variables.
const WorkerCommand = "Worker"

// JobCreateRequest is the body of an ADSP job creation call.
type JobCreateRequest struct {
	Name            string            `json:"name"`
	Command         string            `json:"command"`
	ResourceProfile *string           `json:"resource_profile,omitempty"`
	Variables       map[string]string `json:"variables,omitempty"`
	Run             bool              `json:"autorun"`
}

// JobCreateResponse is the raw job record returned by ADSP.
type JobCreateResponse map[string]any

// ID returns the job identifier, or "" when the response carries none.
func (r JobCreateResponse) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// JobRun is one execution of an ADSP job.
type JobRun struct {
	ID      string `json:"id"`
	JobID   string `json:"job_id,omitempty"`
	Name    string `json:"name,omitempty"`
	State   string `json:"state"`
	Created string `json:"created,omitempty"`
	Updated string `json:"updated,omitempty"`
}

// RunLogs holds the output captured for a job run.
type RunLogs struct {
	Job    string `json:"job"`
	Worker string `json:"worker,omitempty"`
}
