package mockservice

import (
	"context"
	"io"
	"net/http"
	"time"
)

// HTTPChecker considers the service healthy when GET on its root URL
// returns any HTTP response.
type HTTPChecker struct {
	url    string
	client *http.Client
}

// NewHTTPChecker creates a checker for url. Each request is bounded by timeout.
func NewHTTPChecker(url string, timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Healthy performs a single health check.
func (c *HTTPChecker) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return true
}

// pollUntil checks cond every interval until it holds, returning the number
// of checks made. attempts <= 0 means no attempt limit; ctx still bounds the
// wait. An error from cond stops polling.
func pollUntil(ctx context.Context, interval time.Duration, attempts int, cond func(context.Context) (bool, error)) (int, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		ok, err := cond(ctx)
		if err != nil {
			return n, err
		}
		if ok {
			return n, nil
		}
		if attempts > 0 && n >= attempts {
			return n, errAttemptsExhausted
		}
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case <-ticker.C:
		}
	}
}

var _ HealthChecker = (*HTTPChecker)(nil)
