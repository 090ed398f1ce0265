package network

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPProber rates connection quality with a lightweight HEAD request.
type HTTPProber struct {
	url        string
	httpClient *http.Client
}

// NewHTTPProber creates a prober against the given health endpoint.
func NewHTTPProber(url string) *HTTPProber {
	return &HTTPProber{
		url:        url,
		httpClient: &http.Client{},
	}
}

// Probe issues one HEAD request and returns the round-trip time.
func (p *HTTPProber) Probe(ctx context.Context) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create probe request: %w", err)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 500 {
		return 0, fmt.Errorf("probe returned status %d", resp.StatusCode)
	}

	return time.Since(start), nil
}
