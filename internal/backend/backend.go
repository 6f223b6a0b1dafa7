package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/imishinist/mlflow-adsp/internal/models"
	"github.com/imishinist/mlflow-adsp/internal/project"
)

// Name is the name the ADSP backend is registered under.
const Name = "adsp"

// RunRequest carries the arguments of a project run.
type RunRequest struct {
	ProjectURI    string
	EntryPoint    string
	Parameters    map[string]string
	Version       string
	BackendConfig models.BackendConfig
	// TrackingURI is accepted for interface compatibility and ignored; the
	// remote job reports to the tracking server from its own environment.
	TrackingURI  string
	ExperimentID string
}

// Runner is the capability the backend registry hands out.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (*SubmittedRun, error)
}

// ProjectFetcher resolves a project URI to a validated working directory.
type ProjectFetcher interface {
	FetchAndValidate(ctx context.Context, uri, version, entryPoint string, params map[string]string) (string, error)
}

// RunRegistrar registers the MLflow run for a project execution.
type RunRegistrar interface {
	CreateProjectRun(ctx context.Context, config *models.ProjectRunConfig) (*models.RunInfo, error)
}

// Stager downloads a URI-valued path parameter to a local destination.
type Stager interface {
	Stage(ctx context.Context, uri, dest string) error
}

// ADSPBackend submits MLflow project runs as ADSP jobs.
type ADSPBackend struct {
	session   Session
	projectID string
	fetcher   ProjectFetcher
	registrar RunRegistrar
	stager    Stager
}

type Option func(*ADSPBackend)

// WithStager enables downloading of URI path parameters into the storage
// directory before the command is built.
func WithStager(s Stager) Option {
	return func(b *ADSPBackend) {
		b.stager = s
	}
}

func NewADSPBackend(session Session, projectID string, fetcher ProjectFetcher, registrar RunRegistrar, opts ...Option) (*ADSPBackend, error) {
	if session == nil {
		return nil, errors.New("platform session is required")
	}
	if projectID == "" {
		return nil, &models.ConfigurationError{Message: "platform project id is required"}
	}
	if fetcher == nil || registrar == nil {
		return nil, errors.New("project fetcher and run registrar are required")
	}
	b := &ADSPBackend{
		session:   session,
		projectID: projectID,
		fetcher:   fetcher,
		registrar: registrar,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Run fetches the project, registers the MLflow run, builds the entry point
// command and submits it as a job. Any failure aborts the remaining steps and
// is returned unchanged. A run registered before a failed submission is left
// as is.
func (b *ADSPBackend) Run(ctx context.Context, req RunRequest) (*SubmittedRun, error) {
	log.Debug().Str("project", req.ProjectURI).Str("entry_point", req.EntryPoint).Msg("Using Anaconda Data Science Platform backend")

	workDir, err := b.fetcher.FetchAndValidate(ctx, req.ProjectURI, req.Version, req.EntryPoint, req.Parameters)
	if err != nil {
		return nil, err
	}

	activeRun, err := b.registrar.CreateProjectRun(ctx, &models.ProjectRunConfig{
		ProjectURI:   req.ProjectURI,
		ExperimentID: req.ExperimentID,
		EntryPoint:   req.EntryPoint,
		Version:      req.Version,
		WorkDir:      workDir,
		Parameters:   req.Parameters,
		Backend:      Name,
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("run_id", activeRun.RunID).Str("work_dir", workDir).Msg("Registered run")

	command, err := b.entryPointCommand(ctx, workDir, req)
	if err != nil {
		return nil, err
	}
	env := BuildEnvironment(activeRun.RunID, req.ExperimentID, command)

	var resourceProfile *string
	profile, ok, err := req.BackendConfig.ResourceProfile()
	if err != nil {
		return nil, err
	}
	if ok {
		resourceProfile = &profile
	}

	resp, err := Submit(ctx, b.session, b.projectID, activeRun.RunID, env, resourceProfile)
	if err != nil {
		return nil, err
	}

	return NewSubmittedRun(b.session, activeRun.RunID, resp)
}

func (b *ADSPBackend) entryPointCommand(ctx context.Context, workDir string, req RunRequest) (string, error) {
	p, err := project.Load(workDir)
	if err != nil {
		return "", err
	}
	storageDir, err := req.BackendConfig.StorageDir()
	if err != nil {
		return "", err
	}

	plan, err := project.StagingPlan(p, req.EntryPoint, req.Parameters, storageDir)
	if err != nil {
		return "", err
	}
	if len(plan) > 0 && b.stager == nil {
		return "", &models.ConfigurationError{
			Message: fmt.Sprintf("parameter %s is a URI (%s) but no object store is configured for staging", plan[0].Param, plan[0].URI),
		}
	}
	for _, item := range plan {
		log.Debug().Str("param", item.Param).Str("uri", item.URI).Str("dest", item.Dest).Msg("Staging parameter")
		if err := b.stager.Stage(ctx, item.URI, item.Dest); err != nil {
			return "", err
		}
	}

	command, err := project.BuildCommand(p, req.EntryPoint, req.Parameters, storageDir)
	if err != nil {
		return "", err
	}
	log.Debug().Str("command", command).Msg("Computed entry point command")
	return command, nil
}
