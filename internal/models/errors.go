package models

import "fmt"

// ConfigurationError reports a bad or missing entry point or backend option.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Err)
	}
	return "configuration error: " + e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ParameterError reports an entry point parameter that is missing or has an invalid value.
type ParameterError struct {
	Name    string
	Message string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Name, e.Message)
}

// AuthenticationError is returned when the platform rejects the session credentials.
type AuthenticationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthenticationError) Error() string {
	return remoteMessage("authentication failed", e.StatusCode, e.Message, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// NetworkError wraps transport failures and server-side errors.
type NetworkError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	return remoteMessage("network error", e.StatusCode, e.Message, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteValidationError is returned when the platform refuses a request as invalid.
type RemoteValidationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteValidationError) Error() string {
	return remoteMessage("request rejected", e.StatusCode, e.Message, e.Err)
}

func (e *RemoteValidationError) Unwrap() error { return e.Err }

func remoteMessage(kind string, status int, msg string, err error) string {
	s := kind
	if status != 0 {
		s = fmt.Sprintf("%s (status %d)", s, status)
	}
	if msg != "" {
		s += ": " + msg
	}
	if err != nil {
		s += ": " + err.Error()
	}
	return s
}
