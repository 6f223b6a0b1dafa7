package mlflow

import (
	"fmt"

	"github.com/databricks/databricks-sdk-go"

	"github.com/imishinist/mlflow-adsp/internal/config"
)

// placeholderToken satisfies the SDK's auth chain for tracking servers that
// do not check credentials.
const placeholderToken = "mlflow-adsp-unauthenticated"

// Client registers and updates the MLflow runs that back project executions.
type Client struct {
	client *databricks.WorkspaceClient
	config *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	wsConfig, err := workspaceConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := databricks.NewWorkspaceClient(wsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create MLflow client: %w", err)
	}

	return &Client{
		client: client,
		config: cfg,
	}, nil
}

// workspaceConfig maps the tracking URI onto SDK settings. "databricks",
// "databricks://profile" and Databricks workspace URLs go through Databricks
// auth; anything else is treated as a plain MLflow server.
func workspaceConfig(cfg *config.Config) (*databricks.Config, error) {
	if !cfg.IsDatabricks() {
		return &databricks.Config{
			Host:  cfg.TrackingURI,
			Token: placeholderToken,
		}, nil
	}

	wsConfig := &databricks.Config{}
	switch profile := cfg.GetDatabricksProfile(); {
	case cfg.TrackingURI == "databricks":
		wsConfig.Host = cfg.DatabricksHost
	case profile != "":
		wsConfig.Profile = profile
	default:
		wsConfig.Host = cfg.TrackingURI
	}

	// an explicit token wins over the profile
	if cfg.DatabricksToken != "" {
		wsConfig.Token = cfg.DatabricksToken
	}

	if wsConfig.Host == "" && wsConfig.Profile == "" {
		return nil, fmt.Errorf("Databricks host or profile is required for tracking URI %q: set DATABRICKS_HOST, use a workspace URL, or databricks://{profile}", cfg.TrackingURI)
	}
	return wsConfig, nil
}
