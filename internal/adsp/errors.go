package adsp

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/databricks/databricks-sdk-go/common"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

const maxErrorMessage = 512

// mapResponseError turns a platform HTTP response into a typed error.
func mapResponseError(_ context.Context, resp common.ResponseWrapper) error {
	if resp.Response == nil || resp.Response.StatusCode < http.StatusBadRequest {
		return nil
	}
	status := resp.Response.StatusCode
	msg := strings.TrimSpace(string(resp.DebugBytes))
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage] + "..."
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return statusError(status, msg)
}

func statusError(status int, msg string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &models.AuthenticationError{StatusCode: status, Message: msg}
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return &models.NetworkError{StatusCode: status, Message: msg}
	default:
		return &models.RemoteValidationError{StatusCode: status, Message: msg}
	}
}

// retriable reports whether a failed call may be attempted again.
func retriable(_ context.Context, err error) bool {
	var netErr *models.NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	switch netErr.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// rejectedBeforeProcessing is the retry policy for non-idempotent calls: only
// rate limiting is retried.
func rejectedBeforeProcessing(_ context.Context, err error) bool {
	var netErr *models.NetworkError
	return errors.As(err, &netErr) && netErr.StatusCode == http.StatusTooManyRequests
}

// classify ensures every error leaving the session is one of the typed
// platform errors. Context cancellation is returned as is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var authErr *models.AuthenticationError
	var netErr *models.NetworkError
	var valErr *models.RemoteValidationError
	if errors.As(err, &authErr) || errors.As(err, &netErr) || errors.As(err, &valErr) {
		return err
	}
	return &models.NetworkError{Err: err}
}
