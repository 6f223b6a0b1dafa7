package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// RunTracker reads and terminates MLflow runs.
type RunTracker interface {
	GetRun(ctx context.Context, runID string) (*models.RunInfo, error)
	UpdateRun(ctx context.Context, runID string, status models.RunStatus) error
}

// RunFailedError is returned by WaitFor when the job did not complete.
type RunFailedError struct {
	RunID string
	State models.RunState
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("run %s ended with state %s", e.RunID, e.State)
}

// WaitFor waits for the submitted run to finish. When the job fails or is
// stopped the MLflow run is terminated with the matching status, unless the
// job already terminated it.
func WaitFor(ctx context.Context, run *SubmittedRun, tracker RunTracker, interval time.Duration) (models.RunState, error) {
	state, err := run.Wait(ctx, interval)
	if err != nil {
		return state, err
	}
	if state == models.RunStateCompleted {
		log.Info().Str("run_id", run.RunID()).Msg("Run succeeded")
		return state, nil
	}

	info, err := tracker.GetRun(ctx, run.RunID())
	if err != nil {
		return state, err
	}
	if !models.RunStatus(info.Status).IsTerminated() {
		if err := tracker.UpdateRun(ctx, run.RunID(), state.RunStatus()); err != nil {
			return state, err
		}
	}
	return state, &RunFailedError{RunID: run.RunID(), State: state}
}
