// Package upstream fetches project records from the remote REST source.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/compliance-dashboard/internal/domain"
)

// maxBodyBytes caps the response size accepted from the source.
const maxBodyBytes = 10 << 20

// ErrUnexpectedStatus is returned for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status from project source")

// Client implements pipeline.Source against GET <baseURL>/projects.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a project source client. baseURL must not end in "/".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// FetchProjects issues a single request and decodes the project array.
// There are no retries; the caller decides what a failure means.
func (c *Client) FetchProjects(ctx context.Context) ([]domain.RawProject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/projects", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("projects request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnexpectedStatus, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	raws, err := domain.ParseRawProjects(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("projects fetched",
		"count", len(raws),
		"duration", time.Since(start),
	)
	return raws, nil
}
