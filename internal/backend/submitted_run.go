package backend

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// Session is the platform API the backend and its run handles depend on.
type Session interface {
	JobCreator
	JobRuns(ctx context.Context, jobID string) ([]models.JobRun, error)
	RunLogs(ctx context.Context, runID string) (models.RunLogs, error)
	RunStop(ctx context.Context, runID string) error
	JobDelete(ctx context.Context, jobID string) error
}

// SubmittedRun is the handle for a job submitted on behalf of an MLflow run.
// It is not safe for concurrent use.
type SubmittedRun struct {
	session      Session
	runID        string
	jobID        string
	response     models.JobCreateResponse
	state        models.RunState
	remoteStatus string
}

// NewSubmittedRun wraps the job created for runID.
func NewSubmittedRun(session Session, runID string, response models.JobCreateResponse) (*SubmittedRun, error) {
	if session == nil {
		return nil, errors.New("platform session is required")
	}
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	jobID := response.ID()
	if jobID == "" {
		return nil, &models.RemoteValidationError{Message: "job creation response has no id"}
	}
	return &SubmittedRun{
		session:  session,
		runID:    runID,
		jobID:    jobID,
		response: response,
	}, nil
}

// Attach rebuilds the handle for an existing job.
func Attach(session Session, runID, jobID string) (*SubmittedRun, error) {
	return NewSubmittedRun(session, runID, models.JobCreateResponse{"id": jobID})
}

func (r *SubmittedRun) RunID() string { return r.runID }

func (r *SubmittedRun) JobID() string { return r.jobID }

// Response returns the raw job creation response.
func (r *SubmittedRun) Response() models.JobCreateResponse { return r.response }

// LastRemoteStatus returns the platform status string seen by the last poll.
func (r *SubmittedRun) LastRemoteStatus() string { return r.remoteStatus }

// PollStatus returns the state of the job's latest run. A job without runs is
// initial. Once a terminal state has been seen it is returned without asking
// the platform again.
func (r *SubmittedRun) PollStatus(ctx context.Context) (models.RunState, error) {
	if _, err := r.refresh(ctx); err != nil {
		return models.RunStateUnknown, err
	}
	return r.state, nil
}

func (r *SubmittedRun) refresh(ctx context.Context) ([]models.JobRun, error) {
	if r.state.Terminal() {
		return nil, nil
	}

	runs, err := r.session.JobRuns(ctx, r.jobID)
	if err != nil {
		return nil, err
	}

	latest, ok := latestRun(runs)
	if !ok {
		r.state = models.RunStateInitial
		r.remoteStatus = ""
		return runs, nil
	}

	state, known := models.ParseRunState(latest.State)
	if !known {
		log.Warn().Str("job_id", r.jobID).Str("status", latest.State).Msg("Unrecognized platform run status")
	}
	r.state = state
	r.remoteStatus = latest.State
	return runs, nil
}

// latestRun picks the most recently created run; among equal timestamps the
// later entry wins.
func latestRun(runs []models.JobRun) (models.JobRun, bool) {
	if len(runs) == 0 {
		return models.JobRun{}, false
	}
	latest := runs[0]
	for _, run := range runs[1:] {
		if run.Created >= latest.Created {
			latest = run
		}
	}
	return latest, true
}

// Wait polls every interval until the job reaches a terminal state.
func (r *SubmittedRun) Wait(ctx context.Context, interval time.Duration) (models.RunState, error) {
	if interval <= 0 {
		return models.RunStateUnknown, fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := r.PollStatus(ctx)
		if err != nil {
			return state, err
		}
		if state.Terminal() {
			return state, nil
		}
		log.Debug().Str("job_id", r.jobID).Stringer("state", state).Msg("Waiting for job")

		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-ticker.C:
		}
	}
}

// FetchLogs returns the output lines of every run of the job, oldest run first.
// Each iteration fetches the logs from the platform again.
func (r *SubmittedRun) FetchLogs(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		runs, err := r.session.JobRuns(ctx, r.jobID)
		if err != nil {
			yield("", err)
			return
		}
		for _, run := range sortedRuns(runs) {
			logs, err := r.session.RunLogs(ctx, run.ID)
			if err != nil {
				yield("", err)
				return
			}
			for _, line := range splitLines(logs.Job) {
				if !yield(line, nil) {
					return
				}
			}
		}
	}
}

func sortedRuns(runs []models.JobRun) []models.JobRun {
	out := make([]models.JobRun, len(runs))
	copy(out, runs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created < out[j].Created })
	return out
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Cancel stops every run of the job that has not finished. A job that has no
// run yet is deleted. Cancelling a terminated job does nothing.
func (r *SubmittedRun) Cancel(ctx context.Context) error {
	runs, err := r.refresh(ctx)
	if err != nil {
		return err
	}
	if r.state.Terminal() {
		return nil
	}

	if len(runs) == 0 {
		log.Info().Str("job_id", r.jobID).Msg("Deleting job that has not started")
		return r.session.JobDelete(ctx, r.jobID)
	}

	for _, run := range runs {
		if state, _ := models.ParseRunState(run.State); state.Terminal() {
			continue
		}
		log.Info().Str("job_id", r.jobID).Str("run", run.ID).Msg("Stopping job run")
		if err := r.session.RunStop(ctx, run.ID); err != nil {
			return err
		}
	}
	return nil
}
