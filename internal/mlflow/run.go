package mlflow

import (
	"context"
	"fmt"
	"os/user"
	"time"

	"github.com/databricks/databricks-sdk-go/service/ml"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// MLflow system tags set on runs registered for project executions.
const (
	TagSourceName       = "mlflow.source.name"
	TagSourceType       = "mlflow.source.type"
	TagProjectEntry     = "mlflow.project.entryPoint"
	TagProjectBackend   = "mlflow.project.backend"
	TagGitCommit        = "mlflow.source.git.commit"
	TagUser             = "mlflow.user"
	TagRunName          = "mlflow.runName"
	TagNoteContent      = "mlflow.note.content"
	SourceTypeProject   = "PROJECT"
	defaultProjectEntry = "main"
)

func (c *Client) CreateRun(ctx context.Context, config *models.RunConfig) (*models.RunInfo, error) {
	var experimentID string

	// Get experiment ID
	if config.ExperimentID != nil {
		experimentID = *config.ExperimentID
	} else {
		return nil, fmt.Errorf("experiment ID must be provided")
	}

	// Generate run name if not provided
	runName := "run-" + time.Now().Format("2006-01-02-15-04-05")
	if config.RunName != nil {
		runName = *config.RunName
	}

	// Prepare tags
	tags := make([]ml.RunTag, 0)
	if config.Tags != nil {
		for key, value := range config.Tags {
			tags = append(tags, ml.RunTag{
				Key:   key,
				Value: value,
			})
		}
	}

	// Add run name as tag
	tags = append(tags, ml.RunTag{
		Key:   TagRunName,
		Value: runName,
	})

	// Add description as tag if provided
	if config.Description != nil {
		tags = append(tags, ml.RunTag{
			Key:   TagNoteContent,
			Value: *config.Description,
		})
	}

	// Create run
	startTime := time.Now()
	resp, err := c.client.Experiments.CreateRun(ctx, ml.CreateRun{
		ExperimentId: experimentID,
		RunName:      runName,
		StartTime:    startTime.UnixMilli(),
		Tags:         tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return &models.RunInfo{
		RunID:        resp.Run.Info.RunId,
		ExperimentID: experimentID,
		RunName:      runName,
		Status:       string(models.RunStatusRunning),
		StartTime:    startTime,
		Tags:         config.Tags,
		Description: func() string {
			if config.Description != nil {
				return *config.Description
			}
			return ""
		}(),
	}, nil
}

// CreateProjectRun registers the run for a project execution and logs its
// parameters.
func (c *Client) CreateProjectRun(ctx context.Context, config *models.ProjectRunConfig) (*models.RunInfo, error) {
	if config.ExperimentID == "" {
		return nil, fmt.Errorf("experiment ID must be provided")
	}

	experimentID := config.ExperimentID
	runInfo, err := c.CreateRun(ctx, &models.RunConfig{
		ExperimentID: &experimentID,
		Tags:         projectRunTags(config, currentUser()),
	})
	if err != nil {
		return nil, err
	}

	if err := c.LogParamsFromMap(ctx, runInfo.RunID, config.Parameters); err != nil {
		return nil, fmt.Errorf("failed to log parameters for run %s: %w", runInfo.RunID, err)
	}

	return runInfo, nil
}

func projectRunTags(config *models.ProjectRunConfig, userName string) map[string]string {
	entryPoint := config.EntryPoint
	if entryPoint == "" {
		entryPoint = defaultProjectEntry
	}

	tags := map[string]string{
		TagSourceName:   config.ProjectURI,
		TagSourceType:   SourceTypeProject,
		TagProjectEntry: entryPoint,
	}
	if config.Backend != "" {
		tags[TagProjectBackend] = config.Backend
	}
	if config.Version != "" {
		tags[TagGitCommit] = config.Version
	}
	if userName != "" {
		tags[TagUser] = userName
	}
	return tags
}

func currentUser() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}

func (c *Client) UpdateRun(ctx context.Context, runID string, status models.RunStatus) error {
	mlStatus, err := updateRunStatus(status)
	if err != nil {
		return err
	}

	updateRun := ml.UpdateRun{
		RunId:  runID,
		Status: mlStatus,
	}

	// Set end time for terminal statuses
	if status.IsTerminated() {
		updateRun.EndTime = time.Now().UnixMilli()
	}

	if _, err := c.client.Experiments.UpdateRun(ctx, updateRun); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

func (c *Client) GetRun(ctx context.Context, runID string) (*models.RunInfo, error) {
	resp, err := c.client.Experiments.GetRun(ctx, ml.GetRunRequest{
		RunId: runID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run := resp.Run
	tags := make(map[string]string)
	for _, tag := range run.Data.Tags {
		tags[tag.Key] = tag.Value
	}

	runInfo := &models.RunInfo{
		RunID:        run.Info.RunId,
		ExperimentID: run.Info.ExperimentId,
		Status:       string(run.Info.Status),
		StartTime:    time.Unix(run.Info.StartTime/1000, 0),
		Tags:         tags,
	}

	if run.Info.EndTime != 0 {
		endTime := time.Unix(run.Info.EndTime/1000, 0)
		runInfo.EndTime = &endTime
	}

	if runName, exists := tags[TagRunName]; exists {
		runInfo.RunName = runName
	}

	if description, exists := tags[TagNoteContent]; exists {
		runInfo.Description = description
	}

	return runInfo, nil
}

// updateRunStatus maps a run status onto the tracking API enum. Unknown
// statuses are rejected rather than guessed.
func updateRunStatus(status models.RunStatus) (ml.UpdateRunStatus, error) {
	switch status {
	case models.RunStatusRunning:
		return ml.UpdateRunStatusRunning, nil
	case models.RunStatusScheduled:
		return ml.UpdateRunStatusScheduled, nil
	case models.RunStatusFinished:
		return ml.UpdateRunStatusFinished, nil
	case models.RunStatusFailed:
		return ml.UpdateRunStatusFailed, nil
	case models.RunStatusKilled:
		return ml.UpdateRunStatusKilled, nil
	default:
		return "", fmt.Errorf("unsupported run status %q", status)
	}
}
