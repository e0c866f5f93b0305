package inbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grptx/inbucket/internal/logging"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to the Inbucket REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient validates baseURL and builds a client with the given timeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the server root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListMailbox(ctx context.Context, name string) ([]MessageHeader, error) {
	var headers []MessageHeader
	if err := c.getJSON(ctx, "/api/v1/mailbox/"+url.PathEscape(name), &headers); err != nil {
		return nil, err
	}
	return headers, nil
}

func (c *Client) GetMessage(ctx context.Context, name, id string) (*Message, error) {
	var msg Message
	path := "/api/v1/mailbox/" + url.PathEscape(name) + "/" + url.PathEscape(id)
	if err := c.getJSON(ctx, path, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) DeleteMessage(ctx context.Context, name, id string) error {
	path := "/api/v1/mailbox/" + url.PathEscape(name) + "/" + url.PathEscape(id)
	resp, err := c.do(ctx, http.MethodDelete, path)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// PurgeMailbox deletes every message in the mailbox.
func (c *Client) PurgeMailbox(ctx context.Context, name string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/v1/mailbox/"+url.PathEscape(name))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Greeting returns the server's HTML greeting fragment.
func (c *Client) Greeting(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/serve/greeting")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read greeting: %w", err)
	}
	return string(data), nil
}

func (c *Client) ServerConfig(ctx context.Context) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := c.getJSON(ctx, "/serve/status", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) Metrics(ctx context.Context) (Metrics, error) {
	var m Metrics
	if err := c.getJSON(ctx, "/debug/vars", &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Status fetches the server config and metrics concurrently.
func (c *Client) Status(ctx context.Context) (*ServerStatus, error) {
	var status ServerStatus
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cfg, err := c.ServerConfig(gctx)
		if err != nil {
			return fmt.Errorf("server config: %w", err)
		}
		status.Config = *cfg
		return nil
	})
	g.Go(func() error {
		m, err := c.Metrics(gctx)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		status.Metrics = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// do performs the request and converts non-2xx responses into *APIError.
// The caller closes the body of a successful response.
func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logging.APIDebug("%s %s failed: %v", method, path, err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	logging.APIDebug("%s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}
