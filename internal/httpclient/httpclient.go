// Package httpclient implements interfaces.HTTPClient over net/http —
// the Ingestor's outbound collaborator for downloading country
// datasets, spec.md §6.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client wraps an *http.Client, adding conditional-request headers and
// surfacing the response's validators back to the caller.
type Client struct {
	HTTP *http.Client
}

// New builds a Client with no overall request timeout (the caller's
// ctx governs cancellation).
func New() *Client {
	return &Client{HTTP: &http.Client{}}
}

// NewWithTimeout builds a Client whose requests — including streaming
// the response body — are bounded by timeout, per
// config.IngestConfig.Timeout (spec.md §4.E).
func NewWithTimeout(timeout time.Duration) *Client {
	return &Client{HTTP: &http.Client{Timeout: timeout}}
}

// Get issues a conditional GET, returning the streamed body and the
// response's ETag/Last-Modified validators. The caller must Close the
// returned body.
func (c *Client) Get(ctx context.Context, url, etag, lastModified string) (io.ReadCloser, string, string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", "", 0, fmt.Errorf("building request: %w", err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", "", 0, fmt.Errorf("performing request: %w", err)
	}
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotModified {
		resp.Body.Close()
		return nil, "", "", 0, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return resp.Body, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), resp.ContentLength, nil
}
