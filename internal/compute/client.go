// Package compute wraps the external nutrition/menu/price computation
// service in a retrying, backoff-aware HTTP client. Classification of
// retryable versus fatal failures lives here and only here; the endpoint
// wrappers in endpoints.go are thin passthroughs over Call.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nutricart/nutricart-api/internal/logger"
	"github.com/nutricart/nutricart-api/internal/types"
	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

// Config configures the computation service client.
type Config struct {
	BaseURL        string
	Timeout        time.Duration // per-attempt request timeout
	MaxAttempts    int           // total attempts, not retries after the first
	InitialBackoff time.Duration // delay before attempt 2; grows linearly per attempt
}

// Client calls the computation service. It holds no mutable state beyond
// its configuration and is safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxAttempts    int
	initialBackoff time.Duration
}

// New creates a computation service client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	backoff := cfg.InitialBackoff
	if backoff == 0 {
		backoff = time.Second
	}

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        cfg.BaseURL,
		maxAttempts:    maxAttempts,
		initialBackoff: backoff,
	}
}

// HTTPError is a non-retryable HTTP failure from the computation service
// (any error status outside 5xx/429).
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("computation service returned %d: %s", e.StatusCode, e.Body)
}

// Call sends payload as JSON to the endpoint and returns the response
// body. Transport failures and 5xx/429 statuses are retried with a
// strictly increasing delay; any other error status fails immediately.
// When the retry budget runs out, the returned error is a
// *types.UpstreamError wrapping the last failure.
func (c *Client) Call(ctx context.Context, method, endpoint string, payload interface{}) (json.RawMessage, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request payload: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			// Progressive backoff: initial * (attempt-1).
			delay := c.initialBackoff * time.Duration(attempt-1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := c.attempt(ctx, method, endpoint, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			// Fatal status: no retry.
			return nil, err
		}

		logger.Warn("computation service attempt failed",
			zap.Int("attempt", attempt),
			zap.String("endpoint", endpoint),
			zap.Error(err))
	}

	logger.Error("computation service unavailable",
		zap.Int("attempts", c.maxAttempts),
		zap.String("endpoint", endpoint),
		zap.Error(lastErr))
	return nil, &types.UpstreamError{Attempts: c.maxAttempts, Err: lastErr}
}

// attempt performs one request. A returned *HTTPError means the status
// was fatal; any other error is retryable.
func (c *Client) attempt(ctx context.Context, method, endpoint string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection refused, timeout, DNS: retryable.
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if retryableStatus(resp.StatusCode) {
		return nil, fmt.Errorf("computation service status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return json.RawMessage(respBody), nil
}

// retryableStatus reports whether the status signals a transient
// condition: server errors and rate limiting.
func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}
