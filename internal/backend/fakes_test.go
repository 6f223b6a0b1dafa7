package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// fakeSession records platform calls and answers from canned data
type fakeSession struct {
	createReqs []models.JobCreateRequest
	createResp models.JobCreateResponse
	createErr  error

	runs      []models.JobRun
	runsErr   error
	runsCalls int
	logs      map[string]models.RunLogs
	logCalls  int

	stopped []string
	deleted []string
}

func (s *fakeSession) JobCreate(ctx context.Context, projectID string, req models.JobCreateRequest) (models.JobCreateResponse, error) {
	s.createReqs = append(s.createReqs, req)
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createResp != nil {
		return s.createResp, nil
	}
	return models.JobCreateResponse{"id": "job-123"}, nil
}

func (s *fakeSession) JobRuns(ctx context.Context, jobID string) ([]models.JobRun, error) {
	s.runsCalls++
	return s.runs, s.runsErr
}

func (s *fakeSession) RunLogs(ctx context.Context, runID string) (models.RunLogs, error) {
	s.logCalls++
	return s.logs[runID], nil
}

func (s *fakeSession) RunStop(ctx context.Context, runID string) error {
	s.stopped = append(s.stopped, runID)
	return nil
}

func (s *fakeSession) JobDelete(ctx context.Context, jobID string) error {
	s.deleted = append(s.deleted, jobID)
	return nil
}

// fakeRegistrar hands out a fixed run id
type fakeRegistrar struct {
	configs []*models.ProjectRunConfig
	err     error
}

func (r *fakeRegistrar) CreateProjectRun(ctx context.Context, config *models.ProjectRunConfig) (*models.RunInfo, error) {
	r.configs = append(r.configs, config)
	if r.err != nil {
		return nil, r.err
	}
	return &models.RunInfo{RunID: "run-abc", ExperimentID: config.ExperimentID, Status: string(models.RunStatusRunning)}, nil
}

// fakeTracker serves GetRun/UpdateRun from memory
type fakeTracker struct {
	status  models.RunStatus
	updates []models.RunStatus
}

func (t *fakeTracker) GetRun(ctx context.Context, runID string) (*models.RunInfo, error) {
	return &models.RunInfo{RunID: runID, Status: string(t.status)}, nil
}

func (t *fakeTracker) UpdateRun(ctx context.Context, runID string, status models.RunStatus) error {
	t.updates = append(t.updates, status)
	t.status = status
	return nil
}

// fakeStager records staged downloads
type fakeStager struct {
	staged map[string]string
}

func (s *fakeStager) Stage(ctx context.Context, uri, dest string) error {
	if s.staged == nil {
		s.staged = map[string]string{}
	}
	s.staged[uri] = dest
	return nil
}

const backendManifest = `name: demo
entry_points:
  main:
    parameters:
      lr: {type: float, default: 0.1}
    command: "python train.py --lr {lr} --out {storage_dir}"
  ingest:
    parameters:
      data: path
    command: "python ingest.py --data {data}"
`

// writeBackendProject creates a project directory for backend tests
func writeBackendProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "MLproject"), []byte(backendManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}
