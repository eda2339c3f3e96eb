// Package agent is the HTTP client of the external content agent service
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"
)

// RunPath is the agent endpoint that executes a full generation workflow
const RunPath = "/run"

// WPConfig carries the WordPress credentials the agent publishes with
type WPConfig struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RunRequest is the body of a run call
type RunRequest struct {
	Topic                string   `json:"topic"`
	JobID                string   `json:"job_id"`
	GoogleAPIKey         string   `json:"google_api_key"`
	GoogleModelName      string   `json:"google_model_name,omitempty"`
	GoogleFallbackModels string   `json:"google_fallback_models,omitempty"`
	WPConfig             WPConfig `json:"wp_config"`
}

// RunResponse is the body of a successful run call
type RunResponse struct {
	Logs   []string        `json:"logs"`
	Result json.RawMessage `json:"result"`
}

// ResultText returns the result as text. A JSON string is unquoted, any other
// JSON value is returned as its raw encoding and a missing result is empty.
func (r *RunResponse) ResultText() string {
	raw := bytes.TrimSpace(r.Result)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// TransportError is returned when the agent cannot be reached or answers with
// a non-2xx status. StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("agent request failed: %v", e.Err)
	}
	return fmt.Sprintf("agent error (status %d): %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client calls the agent service
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a client for the agent at baseURL. A zero timeout leaves
// calls unbounded unless the context carries a deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// BaseURL returns the agent base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Run executes a workflow and blocks until the agent answers
func (c *Client) Run(ctx context.Context, req RunRequest) (*RunResponse, error) {
	agent := fiber.Post(c.baseURL + RunPath)

	// fiber.Agent only bounds the call when the timeout is positive
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &TransportError{Err: context.DeadlineExceeded}
		}
		agent.Timeout(remaining)
	} else if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}

	agent.Set("Accept", "application/json")
	agent.JSON(req)

	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, &TransportError{Err: errors.Join(errs...)}
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, &TransportError{StatusCode: statusCode, Body: string(body)}
	}

	var resp RunResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("error decoding agent response: %w", err)
	}
	return &resp, nil
}
