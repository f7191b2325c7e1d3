package gate

import (
	"fmt"
	"time"
)

const (
	// DefaultWindow is the length of the sliding window.
	DefaultWindow = 3 * time.Minute

	// DefaultCeiling is the maximum number of notifications dispatched within one window.
	DefaultCeiling = 10
)

// Options contains optional configuration for a Gate.
// NewOptions should be used to create instances of Options.
type Options struct {
	Window  time.Duration
	Ceiling int

	// Clock supplies the current time.
	Clock func() time.Time
}

// Option defines a functional option for configuring Options.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		Window:  DefaultWindow,
		Ceiling: DefaultCeiling,
		Clock:   time.Now,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithWindow sets the sliding window length.
func WithWindow(window time.Duration) Option {
	return func(o *Options) error {
		if window <= 0 {
			return fmt.Errorf("window must be positive, got %v", window)
		}
		o.Window = window
		return nil
	}
}

// WithCeiling sets the maximum number of notifications per window.
func WithCeiling(ceiling int) Option {
	return func(o *Options) error {
		if ceiling <= 0 {
			return fmt.Errorf("ceiling must be positive, got %d", ceiling)
		}
		o.Ceiling = ceiling
		return nil
	}
}

// WithClock replaces the time source.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) error {
		if clock == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Clock = clock
		return nil
	}
}
