package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "mlflow-adsp",
	Short: "Run MLflow projects on Anaconda Data Science Platform",
	Long: `A command line tool that submits MLflow project runs as Anaconda Data Science
Platform jobs and tracks the jobs it submitted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setLogLevel(viper.GetString("log_level"))
	},
}

func Execute(ctx context.Context) error {
	setupLogger()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		return err
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("tracking-uri", "", "MLflow tracking URI (overrides MLFLOW_TRACKING_URI)")
	rootCmd.PersistentFlags().String("experiment-id", "", "Experiment ID (overrides MLFLOW_EXPERIMENT_ID)")
	rootCmd.PersistentFlags().StringP("log", "l", "info", "Set log level. Available: trace, debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("ledger", "", "Path of the submission ledger (overrides MLFLOW_LEDGER_PATH)")
	viper.BindPFlag("tracking_uri", rootCmd.PersistentFlags().Lookup("tracking-uri"))
	viper.BindPFlag("experiment_id", rootCmd.PersistentFlags().Lookup("experiment-id"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log"))
	viper.BindPFlag("ledger_path", rootCmd.PersistentFlags().Lookup("ledger"))
}

func initConfig() {
	// Environment variables
	viper.SetEnvPrefix("MLFLOW")
	viper.AutomaticEnv()

	// Databricks and platform settings keep their own names
	viper.BindEnv("databricks_host", "DATABRICKS_HOST")
	viper.BindEnv("databricks_token", "DATABRICKS_TOKEN")
	for _, key := range []string{
		"adsp_host", "adsp_project_id", "adsp_token", "adsp_username",
		"adsp_password", "adsp_token_url", "adsp_client_id", "adsp_timeout",
	} {
		viper.BindEnv(key, envName(key))
	}
	for _, key := range []string{"s3_endpoint", "s3_access_key", "s3_secret_key", "s3_region", "s3_use_ssl"} {
		viper.BindEnv(key, envName(key))
	}

	// Set defaults
	viper.SetDefault("tracking_uri", "http://localhost:5000")
	viper.SetDefault("experiment_id", "0")
	viper.SetDefault("backend", "adsp")
	viper.SetDefault("adsp_timeout", "60s")
	viper.SetDefault("s3_use_ssl", true)
	viper.SetDefault("ledger_path", defaultLedgerPath())
}

// envName maps a config key to its environment variable, e.g. adsp_host -> ADSP_HOST.
func envName(key string) string {
	return strings.ToUpper(key)
}

func defaultLedgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".mlflow-adsp", "runs.db")
	}
	return filepath.Join(home, ".mlflow-adsp", "runs.db")
}

func setupLogger() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func setLogLevel(level string) {
	switch level {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	default:
		log.Warn().Str("level", level).Msg("Unknown log level, using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
