package gbp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/metrics"
)

// TokenGrant is the result of an authorization-code exchange.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// ExchangeCode redeems an OAuth authorization code for tokens. Used once per
// connect flow; the refresh token it yields is the long-lived credential that
// gets encrypted and stored.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenGrant, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, apperrors.ConfigError("google client credentials not configured")
	}

	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", c.redirectURI)

	status, body, err := c.postForm(ctx, data)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, apperrors.UpstreamError(status, fmt.Sprintf("code exchange failed with status %d: %s", status, truncateBody(body)))
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.UpstreamError(http.StatusBadGateway, fmt.Sprintf("failed to decode token response: %v", err))
	}
	if result.RefreshToken == "" {
		return nil, apperrors.UpstreamError(http.StatusBadGateway, "token response missing refresh_token")
	}

	return &TokenGrant{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	}, nil
}

// RefreshAccessToken exchanges the stored refresh token for a short-lived
// access token. A 401 from the token endpoint means the credential itself was
// rejected and surfaces as an auth-expired error, which is the signal callers
// use to invalidate stored state; any other non-200 status is carried
// verbatim in an upstream error.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", apperrors.ConfigError("google client credentials not configured")
	}

	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	status, body, err := c.postForm(ctx, data)
	if err != nil {
		return "", err
	}

	if status == http.StatusUnauthorized {
		metrics.TokenRefreshFailuresTotal.WithLabelValues("expired").Inc()
		return "", apperrors.AuthExpiredError(fmt.Errorf("token endpoint returned status 401: %s", truncateBody(body)))
	}
	if status != http.StatusOK {
		metrics.TokenRefreshFailuresTotal.WithLabelValues("upstream").Inc()
		return "", apperrors.UpstreamError(status, fmt.Sprintf("token refresh failed with status %d: %s", status, truncateBody(body)))
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperrors.UpstreamError(http.StatusBadGateway, fmt.Sprintf("failed to decode token response: %v", err))
	}
	if result.AccessToken == "" {
		return "", apperrors.UpstreamError(http.StatusBadGateway, "token response missing access_token")
	}

	return result.AccessToken, nil
}

func (c *Client) postForm(ctx context.Context, data url.Values) (int, []byte, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()), header)
}
