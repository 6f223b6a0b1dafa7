package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/imishinist/mlflow-adsp/internal/adsp"
	"github.com/imishinist/mlflow-adsp/internal/backend"
	"github.com/imishinist/mlflow-adsp/internal/config"
	"github.com/imishinist/mlflow-adsp/internal/mlflow"
	"github.com/imishinist/mlflow-adsp/internal/models"
	"github.com/imishinist/mlflow-adsp/internal/store"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect and control submitted jobs",
	Long:  "Show status, stream logs, wait for or cancel jobs submitted for MLflow runs",
}

var jobStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a submitted job",
	RunE:  jobStatus,
}

var jobLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the logs of a submitted job",
	RunE:  jobLogs,
}

var jobCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a submitted job",
	Long:  "Stop the job's active runs and mark the MLflow run KILLED",
	RunE:  jobCancel,
}

var jobWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for a submitted job to finish",
	RunE:  jobWait,
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitted jobs",
	RunE:  jobList,
}

func init() {
	rootCmd.AddCommand(jobCmd)
	for _, c := range []*cobra.Command{jobStatusCmd, jobLogsCmd, jobCancelCmd, jobWaitCmd} {
		jobCmd.AddCommand(c)
		c.Flags().String("run-id", "", "MLflow run ID the job was submitted for (required)")
		c.MarkFlagRequired("run-id")
	}
	jobWaitCmd.Flags().Duration("poll-interval", 10*time.Second, "Status poll interval")

	jobCmd.AddCommand(jobListCmd)
	jobListCmd.Flags().Int("limit", 20, "Maximum number of submissions to show (0 for all)")
}

// attachRun looks the run up in the ledger and rebuilds its handle
func attachRun(cmd *cobra.Command, cfg *config.Config) (*backend.SubmittedRun, error) {
	runID, _ := cmd.Flags().GetString("run-id")

	ledger, err := store.NewStore(cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("failed to open submission ledger: %w", err)
	}
	defer ledger.Close()

	sub, err := ledger.ByRunID(cmd.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no job recorded for run %s in %s", runID, cfg.Ledger)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up run %s: %w", runID, err)
	}

	if err := cfg.ValidateADSP(); err != nil {
		return nil, err
	}
	session, err := adsp.NewSession(cmd.Context(), cfg.ADSP)
	if err != nil {
		return nil, fmt.Errorf("failed to open platform session: %w", err)
	}
	return backend.Attach(session, sub.RunID, sub.JobID)
}

func jobStatus(cmd *cobra.Command, args []string) error {
	run, err := attachRun(cmd, config.New())
	if err != nil {
		return err
	}

	state, err := run.PollStatus(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get job status: %w", err)
	}

	printf(cmd, "Run ID: %s\n", run.RunID())
	printf(cmd, "Job ID: %s\n", run.JobID())
	printf(cmd, "Status: %s\n", state)
	if state == models.RunStateUnknown && run.LastRemoteStatus() != "" {
		printf(cmd, "Platform status: %s\n", run.LastRemoteStatus())
	}
	return nil
}

func jobLogs(cmd *cobra.Command, args []string) error {
	run, err := attachRun(cmd, config.New())
	if err != nil {
		return err
	}

	for line, err := range run.FetchLogs(cmd.Context()) {
		if err != nil {
			return fmt.Errorf("failed to fetch logs: %w", err)
		}
		printf(cmd, "%s\n", line)
	}
	return nil
}

func jobCancel(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	run, err := attachRun(cmd, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := run.Cancel(ctx); err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}

	client, err := mlflow.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MLflow client: %w", err)
	}
	info, err := client.GetRun(ctx, run.RunID())
	if err != nil {
		return err
	}
	if !models.RunStatus(info.Status).IsTerminated() {
		if err := client.UpdateRun(ctx, run.RunID(), models.RunStatusKilled); err != nil {
			return fmt.Errorf("failed to end run: %w", err)
		}
	}

	printf(cmd, "Job cancelled\n")
	printf(cmd, "Run ID: %s\n", run.RunID())
	printf(cmd, "Job ID: %s\n", run.JobID())
	return nil
}

func jobWait(cmd *cobra.Command, args []string) error {
	interval, err := pollInterval(cmd)
	if err != nil {
		return err
	}
	cfg := config.New()
	run, err := attachRun(cmd, cfg)
	if err != nil {
		return err
	}
	client, err := mlflow.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MLflow client: %w", err)
	}

	state, err := backend.WaitFor(cmd.Context(), run, client, interval)
	if err != nil {
		return err
	}
	printf(cmd, "Status: %s\n", state)
	return nil
}

func jobList(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	ledger, err := store.NewStore(cfg.Ledger)
	if err != nil {
		return fmt.Errorf("failed to open submission ledger: %w", err)
	}
	defer ledger.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	subs, err := ledger.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tRUN ID\tJOB ID\tENTRY POINT\tPROFILE\tPROJECT")
	for _, s := range subs {
		profile := s.ResourceProfile
		if profile == "" {
			profile = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.CreatedAt.Local().Format(time.DateTime), s.RunID, s.JobID, s.EntryPoint, profile, s.ProjectURI)
	}
	return w.Flush()
}
