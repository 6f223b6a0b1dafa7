package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/imishinist/mlflow-adsp/internal/adsp"
	"github.com/imishinist/mlflow-adsp/internal/config"
	"github.com/imishinist/mlflow-adsp/internal/mlflow"
	"github.com/imishinist/mlflow-adsp/internal/objectstore"
	"github.com/imishinist/mlflow-adsp/internal/project"
)

// DefaultRegistry returns a registry with the ADSP backend registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Name, BuildADSP)
	return r
}

// BuildADSP opens the platform session and tracking client described by cfg
// and returns the ADSP backend. Parameter staging is enabled when an object
// store is configured.
func BuildADSP(ctx context.Context, cfg *config.Config) (Runner, error) {
	if err := cfg.ValidateADSP(); err != nil {
		return nil, err
	}

	session, err := adsp.NewSession(ctx, cfg.ADSP)
	if err != nil {
		return nil, fmt.Errorf("failed to open platform session: %w", err)
	}
	tracking, err := mlflow.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	var opts []Option
	if cfg.HasS3() {
		stager, err := objectstore.NewStager(objectstore.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure object store: %w", err)
		}
		opts = append(opts, WithStager(stager))
		log.Debug().Str("endpoint", cfg.S3.Endpoint).Msg("Parameter staging enabled")
	}

	return NewADSPBackend(session, cfg.ADSP.ProjectID, project.NewFetcher(), tracking, opts...)
}
