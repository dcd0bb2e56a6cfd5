// Package tradelab provides a Go client for the tradelab-server API.
package tradelab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a tradelab-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Backtest runs a backtest on the server.
func (c *Client) Backtest(ctx context.Context, req BacktestRequest) (*BacktestResponse, error) {
	var resp BacktestResponse
	if err := c.post(ctx, "/api/v1/backtest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Strategies lists the strategies the server supports.
func (c *Client) Strategies(ctx context.Context) (*StrategiesResponse, error) {
	var resp StrategiesResponse
	if err := c.get(ctx, "/api/v1/strategies", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Runs returns up to limit recent backtest runs, newest first.
func (c *Client) Runs(ctx context.Context, limit int) (*RunsResponse, error) {
	var resp RunsResponse
	if err := c.get(ctx, fmt.Sprintf("/api/v1/runs?limit=%d", limit), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/api/v1/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr ErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
			return &APIError{Status: resp.StatusCode, Type: apiErr.Error, Message: apiErr.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: resp.Status}
	}
	return json.Unmarshal(data, out)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return e.Message
}
