package models

import "fmt"

// Backend configuration keys.
const (
	BackendConfigResourceProfile = "resource_profile"
	BackendConfigStorageDir      = "PROJECT_STORAGE_DIR"
)

// BackendConfig holds the options passed to a project backend. Unrecognized
// keys are ignored.
type BackendConfig map[string]any

// ResourceProfile returns the requested resource profile. An absent key or an
// empty string means the platform default.
func (c BackendConfig) ResourceProfile() (string, bool, error) {
	raw, ok := c[BackendConfigResourceProfile]
	if !ok || raw == nil {
		return "", false, nil
	}
	profile, ok := raw.(string)
	if !ok {
		return "", false, &ConfigurationError{Message: fmt.Sprintf("%s must be a string, got %T", BackendConfigResourceProfile, raw)}
	}
	if profile == "" {
		return "", false, nil
	}
	return profile, true, nil
}

// StorageDir returns the directory where project artifacts are staged.
func (c BackendConfig) StorageDir() (string, error) {
	raw, ok := c[BackendConfigStorageDir]
	if !ok {
		return "", &ConfigurationError{Message: BackendConfigStorageDir + " is required"}
	}
	dir, ok := raw.(string)
	if !ok || dir == "" {
		return "", &ConfigurationError{Message: BackendConfigStorageDir + " must be a non-empty string"}
	}
	return dir, nil
}
