package project

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// Fetcher resolves project URIs to validated local working directories.
// Only local directories and file:// URIs are supported.
type Fetcher struct{}

func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// FetchAndValidate resolves uri to a project directory and checks that
// entryPoint exists and that params cover its required parameters.
func (f *Fetcher) FetchAndValidate(ctx context.Context, uri, version, entryPoint string, params map[string]string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	base, subdir := splitSubdirectory(uri)
	dir, err := localProjectDir(base)
	if err != nil {
		return "", err
	}
	if version != "" {
		return "", &models.ConfigurationError{
			Message: fmt.Sprintf("setting a version is only supported for Git project URIs, got %q for %s", version, uri),
		}
	}

	if subdir != "" {
		dir = filepath.Join(dir, filepath.FromSlash(subdir))
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", &models.ConfigurationError{Message: fmt.Sprintf("project directory %s does not exist", dir)}
	}

	p, err := Load(dir)
	if err != nil {
		return "", err
	}
	ep, err := p.EntryPoint(entryPoint)
	if err != nil {
		return "", err
	}
	if err := ep.ValidateParameters(params); err != nil {
		return "", err
	}
	return dir, nil
}

// splitSubdirectory splits "uri#sub/dir" into the URI and the subdirectory.
func splitSubdirectory(uri string) (string, string) {
	if idx := strings.LastIndex(uri, "#"); idx != -1 {
		return uri[:idx], strings.Trim(uri[idx+1:], "/")
	}
	return uri, ""
}

func localProjectDir(uri string) (string, error) {
	if uri == "" {
		return "", &models.ConfigurationError{Message: "project URI is required"}
	}
	local, ok := localPathOf(uri)
	if !ok {
		u, _ := url.Parse(uri)
		return "", &models.ConfigurationError{
			Message: fmt.Sprintf("unsupported project URI scheme %q: only local projects can be submitted", u.Scheme),
		}
	}
	abs, err := filepath.Abs(local)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project path: %w", err)
	}
	return abs, nil
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
