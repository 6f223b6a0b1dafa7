package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Host suffixes of Databricks workspaces.
var databricksDomains = []string{
	".cloud.databricks.com",
	".azuredatabricks.net",
	".gcp.databricks.com",
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true,
}

type Config struct {
	TrackingURI     string
	ExperimentID    string
	DatabricksHost  string
	DatabricksToken string
	LogLevel        string

	ADSP    ADSPConfig
	S3      S3Config
	Ledger  string
	Backend string
}

// ADSPConfig holds the Anaconda Data Science Platform session settings.
type ADSPConfig struct {
	Host      string
	ProjectID string
	Token     string
	Username  string
	Password  string
	TokenURL  string
	ClientID  string
	Timeout   time.Duration
}

// S3Config points at the object store used to stage URI path parameters.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

func New() *Config {
	return &Config{
		TrackingURI:     viper.GetString("tracking_uri"),
		ExperimentID:    viper.GetString("experiment_id"),
		DatabricksHost:  viper.GetString("databricks_host"),
		DatabricksToken: viper.GetString("databricks_token"),
		LogLevel:        viper.GetString("log_level"),
		Ledger:          viper.GetString("ledger_path"),
		Backend:         viper.GetString("backend"),
		ADSP: ADSPConfig{
			Host:      viper.GetString("adsp_host"),
			ProjectID: viper.GetString("adsp_project_id"),
			Token:     viper.GetString("adsp_token"),
			Username:  viper.GetString("adsp_username"),
			Password:  viper.GetString("adsp_password"),
			TokenURL:  viper.GetString("adsp_token_url"),
			ClientID:  viper.GetString("adsp_client_id"),
			Timeout:   viper.GetDuration("adsp_timeout"),
		},
		S3: S3Config{
			Endpoint:  viper.GetString("s3_endpoint"),
			AccessKey: viper.GetString("s3_access_key"),
			SecretKey: viper.GetString("s3_secret_key"),
			Region:    viper.GetString("s3_region"),
			UseSSL:    viper.GetBool("s3_use_ssl"),
		},
	}
}

func (c *Config) Validate() error {
	if c.TrackingURI == "" {
		return fmt.Errorf("tracking URI is required")
	}

	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: trace, debug, info, warn, error, fatal)", c.LogLevel)
	}

	return nil
}

// ValidateADSP checks the settings needed to open an ADSP session.
func (c *Config) ValidateADSP() error {
	a := c.ADSP
	if a.Host == "" {
		return fmt.Errorf("ADSP host is required (set ADSP_HOST)")
	}
	if a.ProjectID == "" {
		return fmt.Errorf("ADSP project ID is required (set ADSP_PROJECT_ID)")
	}
	if a.Token == "" && (a.Username == "" || a.Password == "") {
		return fmt.Errorf("ADSP credentials are required: set ADSP_TOKEN or ADSP_USERNAME and ADSP_PASSWORD")
	}
	if a.Token == "" && a.TokenURL == "" {
		return fmt.Errorf("ADSP token URL is required for password authentication (set ADSP_TOKEN_URL)")
	}
	if a.Timeout < 0 {
		return fmt.Errorf("ADSP timeout must be non-negative")
	}
	return nil
}

// HasS3 reports whether an object store is configured for parameter staging.
func (c *Config) HasS3() bool {
	return c.S3.Endpoint != ""
}

// IsDatabricks reports whether the tracking URI is served by a Databricks
// workspace: "databricks", "databricks://profile" or an https workspace URL.
func (c *Config) IsDatabricks() bool {
	if c.TrackingURI == "databricks" {
		return true
	}
	u, err := url.Parse(c.TrackingURI)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "databricks":
		return true
	case "https":
		return isDatabricksHost(u.Hostname())
	default:
		return false
	}
}

func isDatabricksHost(host string) bool {
	for _, domain := range databricksDomains {
		if strings.HasSuffix(host, domain) {
			return true
		}
	}
	return false
}

// GetDatabricksProfile returns the profile of a databricks://{profile} URI.
func (c *Config) GetDatabricksProfile() string {
	profile, ok := strings.CutPrefix(c.TrackingURI, "databricks://")
	if !ok {
		return ""
	}
	profile, _, _ = strings.Cut(profile, "/")
	return profile
}
