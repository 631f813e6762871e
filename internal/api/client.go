// Package api is the HTTP client for the LeadFlow campaign backend.
//
// The client is a stateless fetcher: every call is a single request with no
// retries and no caching. Errors surface as *RequestError for HTTP failures
// and wrapped transport errors otherwise, so callers always see either a
// complete decoded response or an error, never a partial result.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/leadflow/leadflow-cli/internal/debug"
	"github.com/leadflow/leadflow-cli/internal/validation"
)

const DefaultTimeout = 30 * time.Second

// Client is the LeadFlow backend API client.
type Client struct {
	BaseURL           string
	HTTP              *http.Client
	UserAgent         string
	skipURLValidation bool // internal flag for testing only
	validatedBaseURL  bool
	validateMu        sync.Mutex
}

// Compile-time interface implementation checks
var (
	_ Requester    = (*Client)(nil)
	_ PathResolver = (*Client)(nil)
	_ HTTPExecutor = (*Client)(nil)
)

var validateBaseURL = validation.ValidateBaseURL

// New creates a new LeadFlow API client
func New(baseURL string) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	transport.TLSClientConfig.InsecureSkipVerify = false

	// Allow arbitrary URLs when LEADFLOW_TESTING=1 is set (for integration tests)
	skipValidation := os.Getenv("LEADFLOW_TESTING") == "1"

	return &Client{
		BaseURL:           baseURL,
		skipURLValidation: skipValidation,
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
	}
}

// newTestClient creates a client with URL validation disabled for testing
func newTestClient(baseURL string) *Client {
	c := New(baseURL)
	c.skipURLValidation = true
	return c
}

func (c *Client) ensureBaseURLValidated() error {
	if c.skipURLValidation {
		return nil
	}

	c.validateMu.Lock()
	defer c.validateMu.Unlock()

	if c.validatedBaseURL {
		return nil
	}

	if err := validateBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("URL validation failed: %w", err)
	}

	c.validatedBaseURL = true
	return nil
}

// apiPath returns the full URL for an /api endpoint
func (c *Client) apiPath(path string) string {
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return c.BaseURL + "/api" + path
}

// do performs an HTTP request and decodes the response
func (c *Client) do(ctx context.Context, method, url string, body any, result any) error {
	respBody, _, err := c.executeRequest(ctx, method, url, body)
	if err != nil {
		return err
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
		}
	}
	return nil
}

// doRaw performs an HTTP request and returns the raw response body
func (c *Client) doRaw(ctx context.Context, method, url string, body any) ([]byte, error) {
	respBody, _, err := c.executeRequest(ctx, method, url, body)
	return respBody, err
}

// executeRequest performs a single HTTP request. It returns the response
// body, status code, and any error. There is deliberately no retry loop here:
// callers that want retry semantics own them.
func (c *Client) executeRequest(ctx context.Context, method, url string, body any) ([]byte, int, error) {
	if err := c.ensureBaseURLValidated(); err != nil {
		return nil, 0, err
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", method, "url", url, "error", err)
		}
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", method, "url", url, "status", resp.StatusCode, "duration", time.Since(start))
	}

	if resp.StatusCode >= 400 {
		return respBody, resp.StatusCode, newRequestError(resp.StatusCode, respBody)
	}

	return respBody, resp.StatusCode, nil
}

// Get performs a GET request against an /api path
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, c.apiPath(path), nil, result)
}

// Post performs a POST request against an /api path
func (c *Client) Post(ctx context.Context, path string, body any, result any) error {
	return c.do(ctx, http.MethodPost, c.apiPath(path), body, result)
}

// DoRaw performs an HTTP request with the given method and path, returning
// the raw response body and status code. This backs the raw API command.
// The path is relative to /api (e.g. "/threads").
func (c *Client) DoRaw(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	return c.executeRequest(ctx, method, c.apiPath(path), body)
}

// HealthCheck checks if the backend is reachable via GET /api/threads.
// Returns true if the server responds with 200, false otherwise.
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	if err := c.ensureBaseURLValidated(); err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiPath("/threads"), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK, nil
}
