package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Learning backend defaults.
const (
	DefaultTimeout          = 2 * time.Minute
	LearningContentEndpoint = "/generate-learning-content"

	maxResponseBytes = 16 << 20
)

// APIError is a non-2xx response from the learning backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the learning backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	Decoder    Decoder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LearningRequest is the body of a learning-content request.
type LearningRequest struct {
	Topic       string         `json:"topic"`
	UserProfile map[string]any `json:"user_profile,omitempty"`
}

// GenerateLearningContent asks the backend for learning content on topic
// and returns the raw response body.
func (c *Client) GenerateLearningContent(ctx context.Context, req LearningRequest) ([]byte, error) {
	return c.post(ctx, LearningContentEndpoint, req)
}

// FetchMindmap requests learning content and decodes the mind-map from it.
// The requested topic is used when the response does not name one.
func (c *Client) FetchMindmap(ctx context.Context, req LearningRequest) (*Result, error) {
	body, err := c.GenerateLearningContent(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := c.Decoder.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode learning content: %w", err)
	}
	if res.Topic == "" {
		res.Topic = req.Topic
	}
	return res, nil
}

// Loader returns a Loader that fetches the mind-map for req.
func (c *Client) Loader(req LearningRequest) Loader {
	return LoaderFunc(func(ctx context.Context) (*Result, error) {
		return c.FetchMindmap(ctx, req)
	})
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", http.MethodPost, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(http.MethodPost, endpoint, resp.StatusCode, data)
	}
	return data, nil
}

// newAPIError prefers the "error" field of a JSON error body.
func newAPIError(method, endpoint string, status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{Status: status, Message: payload.Error}
	}
	return &APIError{
		Status:  status,
		Message: fmt.Sprintf("%s %s failed with status %d", method, endpoint, status),
	}
}
