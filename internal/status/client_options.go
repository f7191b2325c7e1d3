package status

import (
	"fmt"
	"net/http"
	"time"
)

// ClientOptions contains optional configuration for the status client.
// NewClientOptions should be used to create instances of ClientOptions.
type ClientOptions struct {
	// HTTPClient performs the requests.
	HTTPClient *http.Client

	// Timeout bounds a single fetch, zero disables the client-side bound.
	Timeout time.Duration
}

// ClientOption defines a functional option for configuring ClientOptions.
type ClientOption func(*ClientOptions) error

// NewClientOptions creates ClientOptions with optional configurations applied.
func NewClientOptions(opts ...ClientOption) (ClientOptions, error) {
	options := ClientOptions{
		HTTPClient: http.DefaultClient,
		Timeout:    DefaultFetchTimeout(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return ClientOptions{}, err
		}
	}

	return options, nil
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *ClientOptions) error {
		if c == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		o.HTTPClient = c
		return nil
	}
}

// WithTimeout bounds every fetch.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) error {
		if timeout <= 0 {
			return fmt.Errorf("fetch timeout must be positive, got %v", timeout)
		}
		o.Timeout = timeout
		return nil
	}
}

// DefaultFetchTimeout is the default bound on a single status fetch.
func DefaultFetchTimeout() time.Duration {
	return 10 * time.Second
}
