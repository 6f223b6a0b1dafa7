package adsp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/imishinist/mlflow-adsp/internal/config"
	"github.com/imishinist/mlflow-adsp/internal/models"
)

const defaultClientID = "anaconda-platform"

// NewTokenSource returns the token source used to authenticate platform
// requests: a static token when one is configured, otherwise a password grant
// against the platform's token endpoint.
func NewTokenSource(ctx context.Context, cfg config.ADSPConfig) (oauth2.TokenSource, error) {
	if cfg.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}), nil
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, &models.AuthenticationError{Message: "no token or username/password configured"}
	}
	if cfg.TokenURL == "" {
		return nil, &models.AuthenticationError{Message: "token URL is required for password authentication"}
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}
	oauthCfg := &oauth2.Config{
		ClientID: clientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	token, err := oauthCfg.PasswordCredentialsToken(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return nil, tokenError(err)
	}
	return oauthCfg.TokenSource(ctx, token), nil
}

func tokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		if status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden {
			return &models.AuthenticationError{StatusCode: status, Message: "login rejected", Err: err}
		}
		return &models.NetworkError{StatusCode: status, Message: "token request failed", Err: err}
	}
	return &models.NetworkError{Message: "token request failed", Err: err}
}

// authVisitor sets the Authorization header from ts on every request.
func authVisitor(ts oauth2.TokenSource) func(*http.Request) error {
	return func(r *http.Request) error {
		token, err := ts.Token()
		if err != nil {
			return fmt.Errorf("failed to obtain platform token: %w", tokenError(err))
		}
		token.SetAuthHeader(r)
		return nil
	}
}
