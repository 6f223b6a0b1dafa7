package backend

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// JobCreator is the part of the platform session used for submission.
type JobCreator interface {
	JobCreate(ctx context.Context, projectID string, req models.JobCreateRequest) (models.JobCreateResponse, error)
}

// Submit creates and starts one platform job named after runID. A nil
// resourceProfile leaves the choice to the platform. Every call creates a new
// job; errors from the session are returned unchanged.
func Submit(ctx context.Context, session JobCreator, projectID, runID string, env map[string]string, resourceProfile *string) (models.JobCreateResponse, error) {
	req := models.JobCreateRequest{
		Name:      runID,
		Command:   models.WorkerCommand,
		Variables: env,
		Run:       true,
	}
	if resourceProfile != nil {
		profile := *resourceProfile
		req.ResourceProfile = &profile
	}

	resp, err := session.JobCreate(ctx, projectID, req)
	if err != nil {
		return nil, err
	}

	log.Info().Str("run_id", runID).Str("job_id", resp.ID()).Msg("Submitted job")
	return resp, nil
}
