package config

import "testing"

func validADSP() ADSPConfig {
	return ADSPConfig{Host: "https://ae.example.com", ProjectID: "a0-abc", Token: "t"}
}

func TestValidate(t *testing.T) {
	if err := (&Config{}).Validate(); err == nil {
		t.Fatalf("Validate() expected error for empty tracking URI")
	}
	if err := (&Config{TrackingURI: "http://localhost:5000", LogLevel: "loud"}).Validate(); err == nil {
		t.Fatalf("Validate() expected error for bad log level")
	}
	if err := (&Config{TrackingURI: "http://localhost:5000", LogLevel: "debug"}).Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
}

func TestValidateADSP(t *testing.T) {
	cfg := &Config{ADSP: validADSP()}
	if err := cfg.ValidateADSP(); err != nil {
		t.Fatalf("ValidateADSP() err=%v", err)
	}

	cfg.ADSP.ProjectID = ""
	if err := cfg.ValidateADSP(); err == nil {
		t.Fatalf("ValidateADSP() expected error for missing project")
	}

	cfg.ADSP = validADSP()
	cfg.ADSP.Token = ""
	cfg.ADSP.Username = "alice"
	cfg.ADSP.Password = "secret"
	if err := cfg.ValidateADSP(); err == nil {
		t.Fatalf("ValidateADSP() expected error for password auth without token URL")
	}
	cfg.ADSP.TokenURL = "https://ae.example.com/auth/token"
	if err := cfg.ValidateADSP(); err != nil {
		t.Fatalf("ValidateADSP() err=%v", err)
	}
}

func TestIsDatabricks(t *testing.T) {
	cases := map[string]bool{
		"databricks":                            true,
		"databricks://prod":                     true,
		"https://dbc-1.cloud.databricks.com/ml": true,
		"https://adb-2.azuredatabricks.net":     true,
		"http://localhost:5000":                 false,
		"https://mlflow.example.com":            false,
	}
	for uri, want := range cases {
		c := &Config{TrackingURI: uri}
		if got := c.IsDatabricks(); got != want {
			t.Fatalf("IsDatabricks(%q)=%v, want %v", uri, got, want)
		}
	}
	if got := (&Config{TrackingURI: "databricks://prod/extra"}).GetDatabricksProfile(); got != "prod" {
		t.Fatalf("GetDatabricksProfile()=%q, want prod", got)
	}
}
