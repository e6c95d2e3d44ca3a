package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/criteo/kubetoken/internal/tokenprovider"
)

// RequestIDHeader correlates a request with API-side logs
const RequestIDHeader = "X-Vcap-Request-Id"

// TokenSource supplies the Authorization header value for a connection
type TokenSource interface {
	GetToken(conn tokenprovider.ConnectionContext) (string, bool)
	Invalidate(conn tokenprovider.ConnectionContext)
}

// Client wraps HTTP client for API calls
type Client struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a new API client
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL: baseURL,
		Tokens:  tokens,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Logger: logger,
	}
}

// connection returns the connection context for this client's API
func (c *Client) connection() tokenprovider.ConnectionContext {
	host := c.BaseURL
	if u, err := url.Parse(c.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return tokenprovider.ConnectionContext{APIHost: host}
}

// doRequest executes an HTTP request with authentication
func (c *Client) doRequest(ctx context.Context, method, path string) (*http.Response, error) {
	endpoint := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.New().String())

	// Kubeconfig tokens arrive as "Bearer <token>", service-account tokens
	// arrive raw. Only surrounding whitespace is stripped, since a mounted
	// token file usually ends with a newline.
	conn := c.connection()
	if c.Tokens != nil {
		if token, ok := c.Tokens.GetToken(conn); ok && strings.TrimSpace(token) != "" {
			req.Header.Set("Authorization", strings.TrimSpace(token))
		}
	}

	c.Logger.Debug("Sending request",
		"method", method,
		"url", endpoint,
		"request_id", req.Header.Get(RequestIDHeader),
		"authenticated", req.Header.Get("Authorization") != "")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.Tokens != nil {
		c.Tokens.Invalidate(conn)
	}

	return resp, nil
}

// Get executes a GET request
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.doRequest(ctx, http.MethodGet, path)
}
