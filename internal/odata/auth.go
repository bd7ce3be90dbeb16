package odata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// tokenClientID is the public OpenID client the catalog's identity service
// exposes for password-grant authentication.
const tokenClientID = "cdse-public"

// TokenSource exchanges account credentials for short-lived access tokens.
type TokenSource struct {
	tokenURL   string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTokenSource creates a token source against the given identity endpoint.
func NewTokenSource(tokenURL, username, password string, timeout time.Duration) *TokenSource {
	return &TokenSource{
		tokenURL: tokenURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger for the token source.
func (ts *TokenSource) WithLogger(logger *slog.Logger) *TokenSource {
	ts.logger = logger
	return ts
}

// Token requests a fresh access token.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("client_id", tokenClientID)
	form.Set("grant_type", "password")
	form.Set("username", ts.username)
	form.Set("password", ts.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		ts.logger.ErrorContext(ctx, "identity service rejected token request",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(body)),
		)
		return "", fmt.Errorf("identity service returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("identity service returned an empty access token")
	}

	ts.logger.DebugContext(ctx, "obtained access token")
	return payload.AccessToken, nil
}
