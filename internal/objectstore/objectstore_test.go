package objectstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("Validate() expected error for empty endpoint")
	}
	if err := (Config{Endpoint: "http://minio:9000"}).Validate(); err == nil {
		t.Fatalf("Validate() expected error for endpoint with scheme")
	}
	if err := (Config{Endpoint: "minio:9000", AccessKey: "a"}).Validate(); err == nil {
		t.Fatalf("Validate() expected error for half credentials")
	}
	if err := (Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b"}).Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://datasets/train/part-0.csv")
	if err != nil {
		t.Fatalf("ParseS3URI() err=%v", err)
	}
	if bucket != "datasets" || key != "train/part-0.csv" {
		t.Fatalf("ParseS3URI()=%q,%q", bucket, key)
	}

	var cfgErr *models.ConfigurationError
	for _, uri := range []string{"gs://bucket/key", "s3://bucket", "s3:///key"} {
		if _, _, err := ParseS3URI(uri); !errors.As(err, &cfgErr) {
			t.Fatalf("ParseS3URI(%q) expected ConfigurationError, got %v", uri, err)
		}
	}
}

func TestStageRejectsUnsupportedScheme(t *testing.T) {
	s, err := NewStager(Config{Endpoint: "localhost:9000"})
	if err != nil {
		t.Fatalf("NewStager() err=%v", err)
	}
	err = s.Stage(context.Background(), "https://example.com/data.csv", filepath.Join(t.TempDir(), "data.csv"))
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if _, err := NewStagerWithClient(nil); err == nil {
		t.Fatalf("NewStagerWithClient(nil) expected error")
	}
}
