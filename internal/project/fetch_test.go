package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// TestFetchAndValidate tests resolving a local project
func TestFetchAndValidate(t *testing.T) {
	dir := writeProject(t, testManifest, "data.csv")
	params := map[string]string{"epochs": "1", "data": filepath.Join(dir, "data.csv")}

	got, err := NewFetcher().FetchAndValidate(context.Background(), dir, "", "main", params)
	if err != nil {
		t.Fatalf("FetchAndValidate() err=%v", err)
	}
	if got != dir {
		t.Fatalf("FetchAndValidate()=%q, want %q", got, dir)
	}

	got, err = NewFetcher().FetchAndValidate(context.Background(), "file://"+dir, "", "simple", nil)
	if err != nil || got != dir {
		t.Fatalf("FetchAndValidate(file://)=%q,%v", got, err)
	}
}

// TestFetchAndValidateSubdirectory tests the #subdirectory suffix
func TestFetchAndValidateSubdirectory(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "MLproject"), []byte(testManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewFetcher().FetchAndValidate(context.Background(), root+"#nested", "", "simple", nil)
	if err != nil || got != sub {
		t.Fatalf("FetchAndValidate()=%q,%v, want %q", got, err, sub)
	}
}

// TestFetchAndValidateErrors tests rejected inputs
func TestFetchAndValidateErrors(t *testing.T) {
	dir := writeProject(t, testManifest)
	f := NewFetcher()
	ctx := context.Background()
	var cfgErr *models.ConfigurationError
	var paramErr *models.ParameterError

	if _, err := f.FetchAndValidate(ctx, dir, "abc123", "simple", nil); !errors.As(err, &cfgErr) {
		t.Fatalf("version on local project: expected ConfigurationError, got %v", err)
	}
	if _, err := f.FetchAndValidate(ctx, "https://github.com/org/repo", "", "main", nil); !errors.As(err, &cfgErr) {
		t.Fatalf("remote URI: expected ConfigurationError, got %v", err)
	}
	if _, err := f.FetchAndValidate(ctx, filepath.Join(dir, "absent"), "", "main", nil); !errors.As(err, &cfgErr) {
		t.Fatalf("missing dir: expected ConfigurationError, got %v", err)
	}
	if _, err := f.FetchAndValidate(ctx, dir, "", "nope", nil); !errors.As(err, &cfgErr) {
		t.Fatalf("unknown entry point: expected ConfigurationError, got %v", err)
	}
	if _, err := f.FetchAndValidate(ctx, dir, "", "main", nil); !errors.As(err, &paramErr) {
		t.Fatalf("missing params: expected ParameterError, got %v", err)
	}
}
