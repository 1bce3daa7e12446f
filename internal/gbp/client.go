package gbp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/metrics"
)

const (
	defaultTokenURL   = "https://oauth2.googleapis.com/token"
	defaultAPIBaseURL = "https://mybusiness.googleapis.com/v4"
	defaultTimeout    = 30 * time.Second

	// maxErrorBodyLen bounds how much of an upstream error body ends up in
	// error messages and logs.
	maxErrorBodyLen = 512
)

// Config holds the OAuth client credentials and the per-call timeout.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Timeout      time.Duration
}

// Client talks to the Google Business Profile API.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string // overridable for testing
	apiBaseURL   string // overridable for testing
	timeout      time.Duration
}

// NewClient creates a Client. A zero timeout falls back to 30 seconds.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient:   &http.Client{},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		tokenURL:     defaultTokenURL,
		apiBaseURL:   defaultAPIBaseURL,
		timeout:      timeout,
	}
}

// do executes a request under the client's timeout composed with the caller's
// context: whichever fires first aborts the call. An abort caused by the
// internal timeout surfaces as a 408 timeout error; a caller-initiated abort
// is re-raised unchanged so the caller can tell its own cancellation apart.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, header http.Header) (int, []byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.mapTransportError(ctx, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, c.mapTransportError(ctx, url, err)
	}

	metrics.GoogleAPIRequestsTotal.WithLabelValues(method, fmt.Sprintf("%d", resp.StatusCode)).Inc()
	return resp.StatusCode, respBody, nil
}

func (c *Client) mapTransportError(ctx context.Context, url string, err error) error {
	// Caller cancellation propagates as-is.
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		metrics.GoogleAPITimeoutsTotal.Inc()
		return apperrors.TimeoutError(fmt.Sprintf("request to %s timed out after %s", url, c.timeout))
	}
	return apperrors.UpstreamError(http.StatusBadGateway, fmt.Sprintf("request to %s failed: %v", url, err))
}

// bearerHeader builds the auth header for API calls.
func bearerHeader(accessToken string) http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)
	return header
}

// truncateBody keeps upstream error bodies short enough for error messages.
func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyLen {
		return s[:maxErrorBodyLen] + "..."
	}
	return s
}
