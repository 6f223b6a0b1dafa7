package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// Stager downloads s3:// parameter values into the project storage directory.
type Stager struct {
	client *minio.Client
}

func NewStager(cfg Config) (*Stager, error) {
	client, err := NewMinIOClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Stager{client: client}, nil
}

func NewStagerWithClient(client *minio.Client) (*Stager, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is required")
	}
	return &Stager{client: client}, nil
}

// Stage downloads the object at uri to dest, creating parent directories.
func (s *Stager) Stage(ctx context.Context, uri, dest string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("stager not initialized")
	}
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	if err := s.client.FGetObject(ctx, bucket, key, dest, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("failed to download %s: %w", uri, err)
	}
	return nil
}

// ParseS3URI splits s3://bucket/key into bucket and key.
func ParseS3URI(uri string) (string, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", &models.ConfigurationError{Message: "invalid parameter URI " + uri, Err: err}
	}
	if u.Scheme != "s3" {
		return "", "", &models.ConfigurationError{Message: fmt.Sprintf("unsupported URI scheme %q for %s (only s3:// can be staged)", u.Scheme, uri)}
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", &models.ConfigurationError{Message: "s3 URI must name a bucket and an object: " + uri}
	}
	return u.Host, key, nil
}
