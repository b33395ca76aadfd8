// Package fetch downloads paper pages over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/papersum/internal/generate"
)

const (
	DefaultTimeout  = 60 * time.Second
	DefaultCacheTTL = 24 * time.Hour

	maxPageBytes = 64 << 20
)

// Client fetches pages, consulting an optional disk cache first.
type Client struct {
	httpClient *http.Client
	cache      *DiskCache
	log        *slog.Logger
	userAgent  string
}

// NewClient returns a client with the given per-request timeout. cache may
// be nil.
func NewClient(timeout time.Duration, cache *DiskCache, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		log:        log,
		userAgent:  "papersum/1.0",
	}
}

// Fetch returns the body of url. Transport failures, 429 and 5xx responses
// come back as *generate.RetryableError.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(url); ok {
			c.log.Debug("fetch cache hit", "url", url)
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &generate.RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, &generate.RetryableError{Message: fmt.Sprintf("read body: %s", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &generate.RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	if c.cache != nil {
		if err := c.cache.Set(url, body); err != nil {
			c.log.Warn("fetch cache write failed", "url", url, "error", err)
		}
	}
	return body, nil
}

// StatusError is a non-retryable HTTP failure.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the page server.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
