package mlflow

import (
	"testing"

	"github.com/imishinist/mlflow-adsp/internal/config"
)

func TestWorkspaceConfig(t *testing.T) {
	cases := []struct {
		name        string
		cfg         config.Config
		wantHost    string
		wantProfile string
		wantToken   string
	}{
		{
			name:      "plain server",
			cfg:       config.Config{TrackingURI: "http://localhost:5000"},
			wantHost:  "http://localhost:5000",
			wantToken: placeholderToken,
		},
		{
			name:      "databricks default host",
			cfg:       config.Config{TrackingURI: "databricks", DatabricksHost: "https://x.cloud.databricks.com", DatabricksToken: "dapi"},
			wantHost:  "https://x.cloud.databricks.com",
			wantToken: "dapi",
		},
		{
			name:        "databricks profile",
			cfg:         config.Config{TrackingURI: "databricks://staging"},
			wantProfile: "staging",
		},
		{
			name:     "workspace url",
			cfg:      config.Config{TrackingURI: "https://x.azuredatabricks.net"},
			wantHost: "https://x.azuredatabricks.net",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := workspaceConfig(&tc.cfg)
			if err != nil {
				t.Fatalf("workspaceConfig() err=%v", err)
			}
			if got.Host != tc.wantHost || got.Profile != tc.wantProfile || got.Token != tc.wantToken {
				t.Fatalf("workspaceConfig()=host %q profile %q token %q", got.Host, got.Profile, got.Token)
			}
		})
	}
}

func TestWorkspaceConfigMissingHost(t *testing.T) {
	if _, err := workspaceConfig(&config.Config{TrackingURI: "databricks"}); err == nil {
		t.Fatalf("expected error without DATABRICKS_HOST")
	}
}
