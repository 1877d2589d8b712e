package dodois

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenGrantClient = (*TokenClient)(nil)

// TokenClient talks to the identity domain's token endpoint. It needs no
// cookie jar: the refresh-token grant is a plain machine-to-machine call.
type TokenClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
}

// NewTokenClient creates a token-endpoint client with this integration's
// client credentials.
func NewTokenClient(baseURL, clientID, clientSecret string, timeout time.Duration) *TokenClient {
	return &TokenClient{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: timeout},
	}
}

// Refresh exchanges a refresh token for a new access/refresh pair. A grant
// the provider rejects (HTTP 4xx) is reported as model.ErrInvalidRefreshToken
// so the caller knows the stored pair must be left untouched.
func (c *TokenClient) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/connect/token", strings.NewReader(form.Encode()))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return model.TokenPair{}, fmt.Errorf("%w: status %d: %s", model.ErrInvalidRefreshToken, resp.StatusCode, grantError(body))
	}
	if resp.StatusCode != http.StatusOK {
		return model.TokenPair{}, fmt.Errorf("token endpoint status %d", resp.StatusCode)
	}

	var grant struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		return model.TokenPair{}, fmt.Errorf("decode token response: %w", err)
	}
	if grant.AccessToken == "" || grant.RefreshToken == "" {
		return model.TokenPair{}, fmt.Errorf("token response missing access or refresh token")
	}

	return model.TokenPair{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
	}, nil
}

// grantError pulls the OAuth error code out of a rejection body for logs.
func grantError(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return "no error code"
	}
	return payload.Error
}
