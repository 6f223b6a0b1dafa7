package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// LoadParamsFile reads entry point parameters from a .json, .yaml or .yml file.
func LoadParamsFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseJSONParams(file)
	case ".yaml", ".yml":
		return ParseYAMLParams(file)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .json, .yaml, .yml)", ext)
	}
}

// LoadBackendConfig accepts either a path to a .json/.yaml/.yml file or an
// inline JSON object. An empty value yields an empty config.
func LoadBackendConfig(value string) (models.BackendConfig, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.BackendConfig{}, nil
	}
	if strings.HasPrefix(value, "{") {
		return ParseJSONBackendConfig(strings.NewReader(value))
	}

	file, err := os.Open(value)
	if err != nil {
		return nil, fmt.Errorf("failed to open backend config %s: %w", value, err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(value)); ext {
	case ".json":
		return ParseJSONBackendConfig(file)
	case ".yaml", ".yml":
		return ParseYAMLBackendConfig(file)
	default:
		return nil, fmt.Errorf("unsupported backend config format: %s (supported: .json, .yaml, .yml)", ext)
	}
}
