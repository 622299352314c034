package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 15 * time.Second

// transientRetries is the number of extra attempts made for transport errors
// and 5xx responses on idempotent GETs before the error is surfaced.
const transientRetries = 1

// APIError is a non-2xx platform response. Message carries the server's
// response body text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api request failed with status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api request failed with status %d", e.Status)
}

// AuthError is an authentication failure. Login failures are normalized to a
// fixed message; the raw server text is deliberately not exposed.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return "incorrect email or password"
}

// Client talks to the carbn fleet platform REST API. The bearer token is an
// explicit input set by the caller, not read from ambient state.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a Client for the given base URL, e.g.
// "https://api-dev.carbn.nz".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token, empty when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// getJSON issues an authenticated GET and decodes the JSON response into out.
// Transport errors and 5xx responses are retried a fixed number of times; the
// last error wins.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= transientRetries; attempt++ {
		retryable, err := c.getJSONOnce(ctx, path, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) getJSONOnce(ctx context.Context, path string, out interface{}) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: readBodyText(resp.Body)}
		return resp.StatusCode >= 500, apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return false, nil
}

// postJSON issues a POST with a JSON body and decodes the response into out.
// Mutations are never retried.
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: readBodyText(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readBodyText(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
