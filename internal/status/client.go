package status

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/steamstat/steamstat/internal/errors"
)

const (
	// HeaderAPIKey is the request header carrying the gateway API key.
	HeaderAPIKey = "X-API-Key"

	// maxBodyBytes bounds how much of a status response is read.
	maxBodyBytes = 4 << 20
)

// Client fetches snapshots from a status gateway.
// NewClient should be used to create instances of Client.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     hclog.Logger
}

// NewClient creates a status client with the given options applied over defaults.
func NewClient(logger hclog.Logger, opt ...ClientOption) (*Client, error) {
	opts, err := NewClientOptions(opt...)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Client{
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		logger:     logger.Named("status"),
	}, nil
}

// Endpoint returns the status URL for a gateway base URL.
func Endpoint(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: invalid gateway URL '%s'", errors.ErrNotConfigured, baseURL)
	}

	return u.JoinPath("api", "v1", "status").String(), nil
}

// Fetch performs a single GET of the gateway status endpoint.
// Transport failures, timeouts and non-2xx responses wrap errors.ErrFetchFailed.
// Bodies that are not valid snapshots wrap errors.ErrInvalidSnapshot.
func (c *Client) Fetch(ctx context.Context, baseURL string, apiKey string) (*Snapshot, error) {
	endpoint, err := Endpoint(baseURL)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFetchFailed, err)
	}
	req.Header.Set(HeaderAPIKey, apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFetchFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("Status response received", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: received HTTP status %d from '%s'", errors.ErrFetchFailed, resp.StatusCode, endpoint)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", errors.ErrFetchFailed, err)
	}

	return Decode(data)
}
