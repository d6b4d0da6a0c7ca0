package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a Source backed by a remote HTTP backend exposing
// POST /api/run and GET /api/status. It is safe for concurrent use.
type Client struct {
	BaseURL    string       // e.g. "http://localhost:5000"
	HTTPClient *http.Client // optional; nil uses a client with a 5s timeout
}

// NewClient returns a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 5 * time.Second}
}

// alreadyRunningMessage is the backend's error text for a rejected start.
const alreadyRunningMessage = "Process is already running"

func (c *Client) doJSON(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		switch {
		case errBody.Error == alreadyRunningMessage:
			return fmt.Errorf("api %s %s: %w", method, path, ErrAlreadyRunning)
		case errBody.Error != "":
			return fmt.Errorf("api %s %s: %s", method, path, errBody.Error)
		}
		return fmt.Errorf("api %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Start asks the backend to begin a run.
func (c *Client) Start(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/run", &out); err != nil {
		return err
	}
	if out.Status != "started" {
		if out.Error != "" {
			return errors.New(out.Error)
		}
		return fmt.Errorf("api POST /api/run: unexpected status %q", out.Status)
	}
	return nil
}

// Status fetches the current snapshot.
func (c *Client) Status(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := c.doJSON(ctx, http.MethodGet, "/api/status", &snap)
	return snap, err
}
