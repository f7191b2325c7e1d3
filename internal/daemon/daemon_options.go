package daemon

import (
	"fmt"

	"github.com/steamstat/steamstat/internal/monitor"
	"github.com/steamstat/steamstat/internal/notify"
)

// Options contains optional configuration for the daemon.
// NewOptions should be used to create instances of Options.
type Options struct {
	// APIOptions contains functional options for the API server.
	APIOptions []APIOption

	// MonitorOptions contains functional options for the background monitor.
	MonitorOptions []monitor.Option

	// InboxSize is the number of notifications retained for activation.
	InboxSize int

	// Opener opens the status page when a notification is activated, may be nil.
	Opener notify.Opener
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
// Starts with default values, then applies options in order with later options overriding earlier ones.
func NewOptions(opts ...Option) (Options, error) {
	options := defaultOptions()

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

// WithAPIOptions configures API server options.
// Replaces all previous API configuration including CORS settings.
func WithAPIOptions(apiOpts ...APIOption) Option {
	return func(o *Options) error {
		o.APIOptions = apiOpts
		return nil
	}
}

// WithMonitorOptions configures the background monitor.
// Replaces all previously supplied monitor options.
func WithMonitorOptions(monitorOpts ...monitor.Option) Option {
	return func(o *Options) error {
		o.MonitorOptions = monitorOpts
		return nil
	}
}

// WithInboxSize configures how many notifications are retained for activation.
func WithInboxSize(size int) Option {
	return func(o *Options) error {
		if size <= 0 {
			return fmt.Errorf("inbox size must be positive, got %d", size)
		}
		o.InboxSize = size
		return nil
	}
}

// WithOpener configures how notification links are opened, nil disables opening.
func WithOpener(opener notify.Opener) Option {
	return func(o *Options) error {
		o.Opener = opener
		return nil
	}
}

// defaultOptions returns Options with default values.
func defaultOptions() Options {
	return Options{
		InboxSize: notify.DefaultInboxSize,
		Opener:    notify.BrowserOpener{},
	}
}
