package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/imishinist/mlflow-adsp/internal/backend"
	"github.com/imishinist/mlflow-adsp/internal/config"
	"github.com/imishinist/mlflow-adsp/internal/mlflow"
	"github.com/imishinist/mlflow-adsp/internal/models"
	"github.com/imishinist/mlflow-adsp/internal/parser"
	"github.com/imishinist/mlflow-adsp/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run <project-uri>",
	Short: "Run an MLflow project as a platform job",
	Long: `Fetch an MLflow project, register a run for it on the tracking server and
submit the entry point as a job on Anaconda Data Science Platform.`,
	Args: cobra.ExactArgs(1),
	RunE: runProject,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("entry-point", "e", "main", "Entry point to run")
	runCmd.Flags().StringArrayP("param", "P", []string{}, "Parameters in key=value format")
	runCmd.Flags().String("params-file", "", "Load parameters from file (JSON/YAML)")
	runCmd.Flags().String("version", "", "Project version to run")
	runCmd.Flags().String("backend-config", "", "Backend configuration: path to a JSON/YAML file or an inline JSON object")
	runCmd.Flags().String("storage-dir", "", "Directory for staged inputs (default: a fresh temporary directory)")
	runCmd.Flags().String("backend", "", "Backend to submit with (default: adsp)")
	runCmd.Flags().Bool("wait", false, "Wait for the job to finish")
	runCmd.Flags().Duration("poll-interval", 10*time.Second, "Status poll interval used with --wait")
}

func runProject(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	if name, _ := cmd.Flags().GetString("backend"); name != "" {
		cfg.Backend = name
	}

	req, err := buildRunRequest(cmd, args[0], cfg)
	if err != nil {
		return err
	}
	wait, _ := cmd.Flags().GetBool("wait")
	interval, err := pollInterval(cmd)
	if wait && err != nil {
		return err
	}

	ctx := cmd.Context()
	runner, err := backend.DefaultRegistry().Build(ctx, cfg.Backend, cfg)
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}

	run, err := runner.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to run project: %w", err)
	}

	recordSubmission(cmd, cfg, req, run)

	printf(cmd, "Run ID: %s\n", run.RunID())
	printf(cmd, "Job ID: %s\n", run.JobID())

	if !wait {
		return nil
	}

	client, err := mlflow.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MLflow client: %w", err)
	}
	state, err := backend.WaitFor(ctx, run, client, interval)
	if err != nil {
		return err
	}
	printf(cmd, "Status: %s\n", state)
	return nil
}

// buildRunRequest constructs the RunRequest from command flags and configuration
func buildRunRequest(cmd *cobra.Command, projectURI string, cfg *config.Config) (backend.RunRequest, error) {
	entryPoint, _ := cmd.Flags().GetString("entry-point")
	rawParams, _ := cmd.Flags().GetStringArray("param")
	paramsFile, _ := cmd.Flags().GetString("params-file")
	version, _ := cmd.Flags().GetString("version")
	backendConfig, _ := cmd.Flags().GetString("backend-config")
	storageDir, _ := cmd.Flags().GetString("storage-dir")

	params := map[string]string{}
	if paramsFile != "" {
		fromFile, err := parser.LoadParamsFile(paramsFile)
		if err != nil {
			return backend.RunRequest{}, fmt.Errorf("failed to parse parameters file: %w", err)
		}
		for k, v := range fromFile {
			params[k] = v
		}
	}
	// command line values win over the file
	fromFlags, err := parseKeyValues(rawParams)
	if err != nil {
		return backend.RunRequest{}, err
	}
	for k, v := range fromFlags {
		params[k] = v
	}

	bc, err := parser.LoadBackendConfig(backendConfig)
	if err != nil {
		return backend.RunRequest{}, fmt.Errorf("failed to load backend config: %w", err)
	}
	if err := applyStorageDir(bc, storageDir); err != nil {
		return backend.RunRequest{}, err
	}

	return backend.RunRequest{
		ProjectURI:    projectURI,
		EntryPoint:    entryPoint,
		Parameters:    params,
		Version:       version,
		BackendConfig: bc,
		TrackingURI:   cfg.TrackingURI,
		ExperimentID:  cfg.ExperimentID,
	}, nil
}

// applyStorageDir sets the storage directory from the flag, or creates a
// temporary one when neither the flag nor the backend config names one.
func applyStorageDir(bc models.BackendConfig, flagValue string) error {
	if flagValue != "" {
		bc[models.BackendConfigStorageDir] = flagValue
		return nil
	}
	if _, err := bc.StorageDir(); err == nil {
		return nil
	}

	dir := filepath.Join(os.TempDir(), "mlflow-adsp", uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	bc[models.BackendConfigStorageDir] = dir
	return nil
}

// recordSubmission stores the run/job pair in the ledger. The job is already
// submitted, so ledger failures are only logged.
func recordSubmission(cmd *cobra.Command, cfg *config.Config, req backend.RunRequest, run *backend.SubmittedRun) {
	ledger, err := store.NewStore(cfg.Ledger)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Ledger).Msg("Failed to open submission ledger")
		return
	}
	defer ledger.Close()

	profile, _, _ := req.BackendConfig.ResourceProfile()
	sub := &store.Submission{
		RunID:           run.RunID(),
		JobID:           run.JobID(),
		ExperimentID:    req.ExperimentID,
		ProjectURI:      req.ProjectURI,
		EntryPoint:      req.EntryPoint,
		ResourceProfile: profile,
	}
	if err := ledger.Record(cmd.Context(), sub); err != nil {
		log.Warn().Err(err).Str("run_id", run.RunID()).Msg("Failed to record submission")
	}
}

func pollInterval(cmd *cobra.Command) (time.Duration, error) {
	interval, _ := cmd.Flags().GetDuration("poll-interval")
	if interval <= 0 {
		return 0, fmt.Errorf("--poll-interval must be positive, got %s", interval)
	}
	return interval, nil
}

// parseKeyValues parses strings in key=value format
func parseKeyValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid parameter format: %s (expected key=value)", pair)
		}
		values[parts[0]] = parts[1]
	}
	return values, nil
}
