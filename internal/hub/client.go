package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client forwards Controller calls to a hub running in another process over
// its HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Controller = (*Client)(nil)

// NewClient returns a client for the hub at baseURL. A nil httpClient gets a
// client with a short timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Ping reports whether a hub answers at the base URL.
func (c *Client) Ping(ctx context.Context) bool {
	_, err := c.Status(ctx)
	return err == nil
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	var status Status
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &status)
	return status, err
}

func (c *Client) Logs(ctx context.Context) ([]string, error) {
	var body struct {
		Logs []string `json:"logs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/logs", nil, &body); err != nil {
		return nil, err
	}
	return body.Logs, nil
}

func (c *Client) Log(ctx context.Context, message string) error {
	return c.do(ctx, http.MethodPost, "/api/log", map[string]string{"message": message}, nil)
}

func (c *Client) Command(ctx context.Context, action string) error {
	return c.do(ctx, http.MethodPost, "/api/command", map[string]string{"action": action}, nil)
}

func (c *Client) ToggleWatcher(ctx context.Context) (string, error) {
	return c.toggle(ctx, "/api/toggle-watcher")
}

func (c *Client) ToggleMCP(ctx context.Context) (string, error) {
	return c.toggle(ctx, "/api/toggle-mcp")
}

func (c *Client) toggle(ctx context.Context, path string) (string, error) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, path, nil, &body); err != nil {
		return "", err
	}
	return body.Status, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&payload).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hub unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("hub %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode hub response: %w", err)
	}
	return nil
}
