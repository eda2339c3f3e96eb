// Package client provides the API client for interacting with the Quill API
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/types"
	"github.com/celestiaorg/quill/pkg/api/v1/routes"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client is the interface for API client
type Client interface {
	// Health Check
	HealthCheck(ctx context.Context) (map[string]string, error)

	// Agent Endpoints
	RunAgent(ctx context.Context, contentID string) (types.RunAgentResponse, error)
	GetJob(ctx context.Context, id string) (types.JobStatusResponse, error)
	TriggerScan(ctx context.Context) (types.ScanResponse, error)

	// Demo Endpoints
	DemoRun(ctx context.Context, topic string) (types.DemoRunResponse, error)
	GetDemoJob(ctx context.Context, id string) (types.JobStatusResponse, error)

	// Content Endpoints
	ListContent(ctx context.Context, opts *models.ListOptions) ([]types.ContentView, error)
	CreateContent(ctx context.Context, req types.CreateContentRequest) (models.ContentItem, error)
	DeleteContent(ctx context.Context, id string) error

	// Website Endpoints
	ListWebsites(ctx context.Context) ([]models.Website, error)
	CreateWebsite(ctx context.Context, req types.CreateWebsiteRequest) (models.Website, error)

	// User Endpoints
	UpdateSettings(ctx context.Context, req types.UpdateSettingsRequest) error
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration

	// Token is sent as a Bearer token, either a session JWT or the cron secret
	Token string
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
	token   string
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (*APIClient, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: timeout,
		token:   opts.Token,
	}, nil
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodPut:
		agent = fiber.Put(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// envelope is the wire form of types.SlugResponse with the data left undecoded
type envelope struct {
	Slug  types.Slug      `json:"slug"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// doRequest sends the HTTP request and decodes the Slug response data into v
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if statusCode < 200 || statusCode >= 300 {
		msg := string(body)
		if decodeErr == nil && env.Error != "" {
			msg = env.Error
		}
		return &fiber.Error{
			Code:    statusCode,
			Message: msg,
		}
	}

	if v == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("error decoding response: %w", decodeErr)
	}
	// Endpoints outside the Slug envelope, such as /health, are decoded as is
	if env.Slug == "" {
		return json.Unmarshal(body, v)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("error decoding response data: %w", err)
	}
	return nil
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	return c.doRequest(agent, response)
}

// HealthCheck checks the health of the API
func (c *APIClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	var response map[string]string
	err := c.executeRequest(ctx, http.MethodGet, routes.HealthCheckURL(), nil, &response)
	return response, err
}

// RunAgent dispatches a content item and returns the created job ID
func (c *APIClient) RunAgent(ctx context.Context, contentID string) (types.RunAgentResponse, error) {
	var response types.RunAgentResponse
	req := types.RunAgentRequest{ContentID: contentID}
	err := c.executeRequest(ctx, http.MethodPost, routes.RunAgentURL(), req, &response)
	return response, err
}

// GetJob reads the status of a job
func (c *APIClient) GetJob(ctx context.Context, id string) (types.JobStatusResponse, error) {
	var response types.JobStatusResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.GetJobURL(id), nil, &response)
	return response, err
}

// TriggerScan runs the due scan. The client token must be the cron secret.
func (c *APIClient) TriggerScan(ctx context.Context) (types.ScanResponse, error) {
	var response types.ScanResponse
	err := c.executeRequest(ctx, http.MethodPost, routes.CronURL(), nil, &response)
	return response, err
}

// DemoRun starts an unauthenticated demo run for a topic
func (c *APIClient) DemoRun(ctx context.Context, topic string) (types.DemoRunResponse, error) {
	var response types.DemoRunResponse
	req := types.DemoRunRequest{Topic: topic}
	err := c.executeRequest(ctx, http.MethodPost, routes.DemoRunURL(), req, &response)
	return response, err
}

// GetDemoJob reads the status of a demo job
func (c *APIClient) GetDemoJob(ctx context.Context, id string) (types.JobStatusResponse, error) {
	var response types.JobStatusResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.DemoGetJobURL(id), nil, &response)
	return response, err
}

// ListContent lists the caller's content items
func (c *APIClient) ListContent(ctx context.Context, opts *models.ListOptions) ([]types.ContentView, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Limit > 0 {
			q.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			q.Set("offset", strconv.Itoa(opts.Offset))
		}
	}

	var response []types.ContentView
	err := c.executeRequest(ctx, http.MethodGet, routes.ListContentURL(q), nil, &response)
	return response, err
}

// CreateContent schedules a new content item
func (c *APIClient) CreateContent(ctx context.Context, req types.CreateContentRequest) (models.ContentItem, error) {
	var response models.ContentItem
	err := c.executeRequest(ctx, http.MethodPost, routes.CreateContentURL(), req, &response)
	return response, err
}

// DeleteContent deletes a content item and its jobs
func (c *APIClient) DeleteContent(ctx context.Context, id string) error {
	return c.executeRequest(ctx, http.MethodDelete, routes.DeleteContentURL(id), nil, nil)
}

// ListWebsites lists the caller's websites
func (c *APIClient) ListWebsites(ctx context.Context) ([]models.Website, error) {
	var response []models.Website
	err := c.executeRequest(ctx, http.MethodGet, routes.ListWebsitesURL(), nil, &response)
	return response, err
}

// CreateWebsite registers a website
func (c *APIClient) CreateWebsite(ctx context.Context, req types.CreateWebsiteRequest) (models.Website, error) {
	var response models.Website
	err := c.executeRequest(ctx, http.MethodPost, routes.CreateWebsiteURL(), req, &response)
	return response, err
}

// UpdateSettings replaces the caller's generation credentials
func (c *APIClient) UpdateSettings(ctx context.Context, req types.UpdateSettingsRequest) error {
	return c.executeRequest(ctx, http.MethodPut, routes.UpdateSettingsURL(), req, nil)
}
