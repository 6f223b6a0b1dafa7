package adsp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/databricks/databricks-sdk-go/httpclient"
	"golang.org/x/oauth2"

	"github.com/imishinist/mlflow-adsp/internal/config"
	"github.com/imishinist/mlflow-adsp/internal/models"
)

const (
	apiPrefix           = "/api/v2"
	defaultHTTPTimeout  = 60 * time.Second
	defaultRetryTimeout = 2 * time.Minute
)

// Session is an authenticated client for the platform's job API. It is safe
// for sequential use; callers serialize submissions themselves.
type Session struct {
	api     *httpclient.ApiClient
	create  *httpclient.ApiClient // retries rate limiting only
	baseURL string
}

// NewSession authenticates against the platform and returns a session.
func NewSession(ctx context.Context, cfg config.ADSPConfig) (*Session, error) {
	ts, err := NewTokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewSessionWithTokenSource(cfg, ts)
}

// NewSessionWithTokenSource builds a session that authenticates with ts.
func NewSessionWithTokenSource(cfg config.ADSPConfig, ts oauth2.TokenSource) (*Session, error) {
	baseURL, err := apiBaseURL(cfg.Host)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}

	newClient := func(retry func(context.Context, error) bool) *httpclient.ApiClient {
		return httpclient.NewApiClient(httpclient.ClientConfig{
			Visitors:       []httpclient.RequestVisitor{authVisitor(ts)},
			HTTPTimeout:    timeout,
			RetryTimeout:   defaultRetryTimeout,
			ErrorMapper:    mapResponseError,
			ErrorRetriable: retry,
		})
	}

	return &Session{
		api:     newClient(retriable),
		create:  newClient(rejectedBeforeProcessing),
		baseURL: baseURL,
	}, nil
}

func apiBaseURL(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("platform host is required")
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	u, err := url.Parse(host)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid platform host %q", host)
	}
	return strings.TrimSuffix(u.Scheme+"://"+u.Host+u.Path, "/") + apiPrefix, nil
}

func (s *Session) url(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(a))
	}
	return s.baseURL + fmt.Sprintf(format, escaped...)
}

// JobCreate creates a job in the project. With req.Run set the job starts
// immediately.
func (s *Session) JobCreate(ctx context.Context, projectID string, req models.JobCreateRequest) (models.JobCreateResponse, error) {
	resp := models.JobCreateResponse{}
	err := s.create.Do(ctx, http.MethodPost, s.url("/projects/%s/jobs", projectID),
		httpclient.WithRequestData(req),
		httpclient.WithResponseUnmarshal(&resp),
	)
	if err != nil {
		return nil, classify(err)
	}
	if resp.ID() == "" {
		return nil, &models.RemoteValidationError{Message: "job creation response has no id"}
	}
	return resp, nil
}

// JobRuns lists the runs of a job.
func (s *Session) JobRuns(ctx context.Context, jobID string) ([]models.JobRun, error) {
	var runs []models.JobRun
	err := s.api.Do(ctx, http.MethodGet, s.url("/jobs/%s/runs", jobID),
		httpclient.WithResponseUnmarshal(&runs),
	)
	if err != nil {
		return nil, classify(err)
	}
	return runs, nil
}

// RunLogs fetches the captured output of a run.
func (s *Session) RunLogs(ctx context.Context, runID string) (models.RunLogs, error) {
	var logs models.RunLogs
	err := s.api.Do(ctx, http.MethodGet, s.url("/runs/%s/logs", runID),
		httpclient.WithResponseUnmarshal(&logs),
	)
	if err != nil {
		return models.RunLogs{}, classify(err)
	}
	return logs, nil
}

// RunStop asks the platform to stop a run.
func (s *Session) RunStop(ctx context.Context, runID string) error {
	err := s.api.Do(ctx, http.MethodPost, s.url("/runs/%s/stop", runID))
	return classify(err)
}

// JobDelete removes a job so that it is not started.
func (s *Session) JobDelete(ctx context.Context, jobID string) error {
	err := s.api.Do(ctx, http.MethodDelete, s.url("/jobs/%s", jobID))
	return classify(err)
}
