package seriescheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPClient wraps http.Client with a per-request timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Get performs a GET request bound to ctx.
func (c *HTTPClient) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// seriesQuery builds the query string shared by the series and export
// endpoints, so both requests describe the same table.
func seriesQuery(config *Config) (string, error) {
	params := url.Values{}
	params.Set("team", config.Team)
	if config.Compare != "" {
		params.Set("compare", config.Compare)
	}
	if config.Source != "" {
		params.Set("source", config.Source)
	}
	if config.From != "" {
		params.Set("from", config.From)
	}
	if config.To != "" {
		params.Set("to", config.To)
	}
	if config.Window > 0 {
		params.Set("window", strconv.Itoa(config.Window))
	}
	if config.Delta {
		params.Set("delta", "true")
	}
	if config.Years != "" {
		from, to, ok := strings.Cut(config.Years, "-")
		if !ok {
			return "", fmt.Errorf("years must look like 1950-2000, got %q", config.Years)
		}
		params.Set("year_from", strings.TrimSpace(from))
		params.Set("year_to", strings.TrimSpace(to))
	}
	return params.Encode(), nil
}
