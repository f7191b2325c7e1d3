package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/steamstat/steamstat/internal/files"
)

// Option defines a functional option for configuring Cache.
type Option func(*Options) error

// Options contains optional configuration for the cache.
type Options struct {
	// dir is the directory where cache files are stored.
	dir string

	// ttl is how long a cached snapshot remains usable.
	ttl time.Duration

	// enabled determines if caching is enabled.
	enabled bool

	// clock supplies the current time.
	clock func() time.Time
}

func NewOptions(opts ...Option) (Options, error) {
	dir, err := files.UserSpecificCacheDir()
	if err != nil {
		return Options{}, err
	}

	// Default options.
	o := Options{
		dir:     dir,
		ttl:     DefaultTTL(),
		enabled: true,
		clock:   time.Now,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithDirectory sets the cache directory.
func WithDirectory(dir string) Option {
	return func(o *Options) error {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return fmt.Errorf("cache directory cannot be empty")
		}
		o.dir = dir
		return nil
	}
}

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) error {
		if ttl <= 0 {
			return fmt.Errorf("TTL must be positive, got %v", ttl)
		}
		o.ttl = ttl
		return nil
	}
}

// WithCaching configures whether caching is enabled.
func WithCaching(enabled bool) Option {
	return func(o *Options) error {
		o.enabled = enabled
		return nil
	}
}

// WithClock replaces the time source.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) error {
		if clock == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.clock = clock
		return nil
	}
}

// DefaultTTL is how long a cached snapshot is served when the gateway cannot be reached.
func DefaultTTL() time.Duration {
	return 24 * time.Hour
}
