package monitor

import (
	"fmt"
	"time"

	"github.com/steamstat/steamstat/internal/gate"
	"github.com/steamstat/steamstat/internal/notify"
)

const (
	// CheckInterval is the cadence of the background monitor.
	// It is independent of the UI refresh interval and is not user configurable.
	CheckInterval = 60 * time.Second

	// FetchTimeout bounds a single fetch made by the monitor.
	FetchTimeout = 10 * time.Second

	// ObserverBuffer is the number of events buffered per subscriber before events are dropped.
	ObserverBuffer = 16
)

// Options contains optional configuration for the Monitor.
// NewOptions should be used to create instances of Options.
type Options struct {
	// Interval between ticks.
	Interval time.Duration

	// FetchTimeout bounds each fetch.
	FetchTimeout time.Duration

	// Gate rate limits notifications. A default gate is created when nil.
	Gate *gate.Gate

	// Opener is attached to notifications for activation, may be nil.
	Opener notify.Opener

	// Metrics records monitor activity. Metrics on a private registry are created when nil.
	Metrics *Metrics

	// Store persists fetched snapshots, may be nil.
	Store SnapshotStore

	// Clock supplies the current time.
	Clock func() time.Time
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		Interval:     CheckInterval,
		FetchTimeout: FetchTimeout,
		Clock:        time.Now,
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

// WithInterval overrides the tick interval.
func WithInterval(interval time.Duration) Option {
	return func(o *Options) error {
		if interval <= 0 {
			return fmt.Errorf("interval must be positive, got %v", interval)
		}
		o.Interval = interval
		return nil
	}
}

// WithFetchTimeout overrides the fetch timeout.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("fetch timeout must be positive, got %v", timeout)
		}
		o.FetchTimeout = timeout
		return nil
	}
}

// WithGate sets the notification gate.
func WithGate(g *gate.Gate) Option {
	return func(o *Options) error {
		if g == nil {
			return fmt.Errorf("gate cannot be nil")
		}
		o.Gate = g
		return nil
	}
}

// WithOpener sets the link opener attached to notifications.
func WithOpener(opener notify.Opener) Option {
	return func(o *Options) error {
		o.Opener = opener
		return nil
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) error {
		if m == nil {
			return fmt.Errorf("metrics cannot be nil")
		}
		o.Metrics = m
		return nil
	}
}

// WithSnapshotStore persists every fetched snapshot to store.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(o *Options) error {
		o.Store = store
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
