package taskserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/scrapedeck/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "scrapedeck/1.0"

	pathStatus   = "/api/status"
	pathScrape   = "/api/scrape"
	pathDownload = "/api/download"
	pathStop     = "/api/stop"
	pathLogs     = "/api/logs"
)

// Client implements domain.TaskAPI and domain.LogFeed against the task service
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client // no overall timeout; the feed stays open
	logger       *slog.Logger
}

// NewClient creates a task service client. A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		streamClient: &http.Client{},
		logger:       logger,
	}
}

// BaseURL returns the service root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs one request and returns the status code and body.
// Transport failures map to domain.ErrServerOffline.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("task service request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		c.logger.Warn("task service request failed", "path", path, "request_id", requestID, "error", err)
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("task service error status",
			"path", path, "request_id", requestID, "status", resp.StatusCode, "body", truncate(string(blob), 200))
	}

	return resp.StatusCode, blob, nil
}

// Status fetches the current state of both stages
func (c *Client) Status(ctx context.Context) (domain.TaskStatus, error) {
	code, body, err := c.doRequest(ctx, http.MethodGet, pathStatus, nil)
	if err != nil {
		return domain.TaskStatus{}, err
	}
	if code != http.StatusOK {
		return domain.TaskStatus{}, fmt.Errorf("%w: status code %d", domain.ErrUnexpectedResponse, code)
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.TaskStatus{}, fmt.Errorf("%w: %v", domain.ErrUnexpectedResponse, err)
	}
	return resp.toDomain(), nil
}

// StartScrape asks the service to scrape target
func (c *Client) StartScrape(ctx context.Context, target string) (domain.CommandResult, error) {
	return c.command(ctx, pathScrape, scrapeRequest{URL: target})
}

// StartDownload asks the service to start the download stage
func (c *Client) StartDownload(ctx context.Context) (domain.CommandResult, error) {
	return c.command(ctx, pathDownload, nil)
}

// Stop asks the service to stop every running stage
func (c *Client) Stop(ctx context.Context) (domain.CommandResult, error) {
	return c.command(ctx, pathStop, nil)
}

// command posts to a command endpoint and decodes the {success, message} reply.
// A non-2xx reply still counts as a remote answer when it carries that body.
func (c *Client) command(ctx context.Context, path string, payload any) (domain.CommandResult, error) {
	code, body, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return domain.CommandResult{}, err
	}

	var resp commandResponse
	if err := json.Unmarshal(body, &resp); err != nil || !resp.valid() {
		if code >= http.StatusBadRequest {
			return domain.CommandResult{}, fmt.Errorf("%w: status code %d", domain.ErrUnexpectedResponse, code)
		}
		if err == nil {
			err = fmt.Errorf("missing success field")
		}
		return domain.CommandResult{}, fmt.Errorf("%w: %v", domain.ErrUnexpectedResponse, err)
	}

	result := resp.toDomain()
	if code >= http.StatusBadRequest && result.Success {
		return domain.CommandResult{}, fmt.Errorf("%w: status code %d", domain.ErrUnexpectedResponse, code)
	}
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
