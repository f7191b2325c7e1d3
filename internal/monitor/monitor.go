package monitor

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/steamstat/steamstat/internal/errors"
	"github.com/steamstat/steamstat/internal/gate"
	"github.com/steamstat/steamstat/internal/notify"
	"github.com/steamstat/steamstat/internal/settings"
	"github.com/steamstat/steamstat/internal/status"
)

const (
	OutageStarted EventKind = "outage_started"
	OutageEnded   EventKind = "outage_ended"
)

// EventKind identifies an availability transition.
type EventKind string

// Event is published to subscribers once per transition.
type Event struct {
	Kind EventKind `json:"kind"`
	At   time.Time `json:"at"`

	// Affected lists the services that were not online, sorted. Empty for OutageEnded.
	Affected []string `json:"affected,omitempty"`

	// Notified is true when a notification was dispatched for the transition.
	Notified bool `json:"notified"`

	// Suppressed is true when the notification gate refused the notification.
	Suppressed bool `json:"suppressed"`
}

// State is a point in time copy of the monitor state.
type State struct {
	Running bool `json:"running"`

	// Configured is false while the gateway URL or API key is missing.
	Configured bool `json:"configured"`

	// LastKnownOutage is the aggregate availability seen by the most recent successful tick.
	LastKnownOutage bool `json:"lastKnownOutage"`

	// NotificationSent is true once an outage notification went out for the current outage.
	NotificationSent bool `json:"notificationSent"`

	// NotificationHistory is the gate's dispatch record, oldest first.
	NotificationHistory []time.Time `json:"notificationHistory"`

	LastError   string     `json:"lastError,omitempty"`
	LastTick    *time.Time `json:"lastTick,omitempty"`
	LastSuccess *time.Time `json:"lastSuccess,omitempty"`
}

// Monitor polls the status gateway on a fixed cadence and raises notifications on availability transitions.
// NewMonitor should be used to create instances of Monitor.
type Monitor struct {
	logger       hclog.Logger
	settings     SettingsProvider
	fetcher      Fetcher
	dispatcher   notify.Dispatcher
	board        *status.Board
	gate         *gate.Gate
	opener       notify.Opener
	metrics      *Metrics
	store        SnapshotStore
	clock        func() time.Time
	interval     time.Duration
	fetchTimeout time.Duration

	// busy is set while a tick is running, a tick that finds it set is skipped.
	busy atomic.Bool

	mu sync.Mutex

	// generation is incremented on every Start and Stop, ticks carry the generation they were started in
	// and their results are discarded when it no longer matches.
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	observers  map[chan Event]struct{}

	configured       bool
	lastKnownOutage  bool
	notificationSent bool
	lastErr          error
	lastTick         *time.Time
	lastSuccess      *time.Time
}

// NewMonitor creates a monitor with the provided dependencies and options.
func NewMonitor(deps Dependencies, opt ...Option) (*Monitor, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for monitor: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid monitor options: %w", err)
	}

	g := opts.Gate
	if g == nil {
		g, err = gate.NewGate(gate.WithClock(opts.Clock))
		if err != nil {
			return nil, err
		}
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}

	return &Monitor{
		logger:       deps.Logger.Named("monitor"),
		settings:     deps.Settings,
		fetcher:      deps.Fetcher,
		dispatcher:   deps.Dispatcher,
		board:        deps.Board,
		gate:         g,
		opener:       opts.Opener,
		metrics:      metrics,
		store:        opts.Store,
		clock:        opts.Clock,
		interval:     opts.Interval,
		fetchTimeout: opts.FetchTimeout,
		observers:    make(map[chan Event]struct{}),
	}, nil
}

// Start begins polling, with the first tick running immediately.
// Calling Start on a running monitor does nothing.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return
	}

	m.generation++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	m.logger.Info("Starting availability monitor", "interval", m.interval)

	go m.loop(ctx, m.generation, m.done)
}

// Stop cancels polling and closes every subscriber channel.
// An in-flight fetch is not interrupted, its result is discarded.
// Calling Stop on a stopped monitor does nothing.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel == nil {
		return
	}

	m.cancel()
	m.cancel = nil
	m.generation++

	for ch := range m.observers {
		close(ch)
		delete(m.observers, ch)
	}

	m.logger.Info("Stopped availability monitor")
}

// Run starts the monitor and blocks until ctx is done, then stops it.
func (m *Monitor) Run(ctx context.Context) error {
	m.Start()
	<-ctx.Done()
	m.Stop()

	return ctx.Err()
}

// Running reports whether the monitor has been started and not stopped.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cancel != nil
}

// Outage reports the aggregate availability seen by the most recent successful tick.
func (m *Monitor) Outage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastKnownOutage
}

// NotificationSent reports whether an outage notification went out for the current outage.
func (m *Monitor) NotificationSent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.notificationSent
}

// State returns a copy of the monitor state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		Running:             m.cancel != nil,
		Configured:          m.configured,
		LastKnownOutage:     m.lastKnownOutage,
		NotificationSent:    m.notificationSent,
		NotificationHistory: m.gate.History(),
		LastTick:            m.lastTick,
		LastSuccess:         m.lastSuccess,
	}
	if m.lastErr != nil {
		s.LastError = m.lastErr.Error()
	}

	return s
}

// Subscribe registers an observer for transition events.
// The returned channel is closed when the monitor stops or the cancel function is called.
// Events are dropped for a subscriber whose buffer is full.
func (m *Monitor) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, ObserverBuffer)

	m.mu.Lock()
	m.observers[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if _, ok := m.observers[ch]; ok {
				delete(m.observers, ch)
				close(ch)
			}
		})
	}

	return ch, cancel
}

func (m *Monitor) loop(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.tick(gen)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(gen)
		}
	}
}

// tick performs one poll and evaluation for the given generation.
func (m *Monitor) tick(gen uint64) {
	if !m.busy.CompareAndSwap(false, true) {
		m.logger.Debug("Previous tick still running, skipping")
		m.metrics.Ticks.WithLabelValues(tickSkipped).Inc()
		return
	}
	defer m.busy.Store(false)

	now := m.clock()

	cfg, err := m.settings.Settings()
	var reason error
	switch {
	case err != nil:
		reason = fmt.Errorf("%w: %w", errors.ErrNotConfigured, err)
	case !cfg.Configured():
		reason = fmt.Errorf("%w: gateway URL and API key are required", errors.ErrNotConfigured)
	default:
		// A gateway URL that cannot be parsed is treated like a missing one.
		if _, urlErr := status.Endpoint(cfg.GatewayURL); urlErr != nil {
			reason = urlErr
		}
	}
	if reason != nil {
		if m.record(gen, func() {
			if m.configured || m.lastTick == nil {
				m.logger.Info("Monitor is not configured, skipping fetch", "reason", reason)
			}
			m.configured = false
			m.lastErr = reason
			m.lastTick = &now
		}) {
			m.metrics.Ticks.WithLabelValues(tickNotConfigured).Inc()
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.fetchTimeout)
	defer cancel()

	start := time.Now()
	snap, err := m.fetcher.Fetch(ctx, cfg.GatewayURL, cfg.GatewayAPIKey)
	latency := time.Since(start)
	if err == nil && snap == nil {
		err = fmt.Errorf("%w: empty snapshot", errors.ErrInvalidSnapshot)
	}

	if !m.current(gen) {
		m.logger.Debug("Discarding fetch result from a stopped monitor")
		m.metrics.Ticks.WithLabelValues(tickDiscarded).Inc()
		return
	}

	m.metrics.FetchDuration.Observe(latency.Seconds())

	if err != nil {
		m.board.Failed(err, latency)
		m.record(gen, func() {
			m.configured = true
			m.lastErr = err
			m.lastTick = &now
		})
		m.metrics.Ticks.WithLabelValues(tickFailure).Inc()
		m.logger.Warn("Status fetch failed", "error", err, "duration", latency)
		return
	}

	m.board.Succeeded(snap, latency)
	m.metrics.observeSnapshot(snap)
	m.metrics.Ticks.WithLabelValues(tickSuccess).Inc()

	if m.store != nil {
		if err := m.store.Store(cfg.GatewayURL, snap); err != nil {
			m.logger.Warn("Failed to cache snapshot", "error", err)
		}
	}

	m.evaluate(ctx, gen, cfg, snap, now)
}

// evaluate compares a fresh snapshot with the last known availability and handles any transition.
func (m *Monitor) evaluate(ctx context.Context, gen uint64, cfg settings.Settings, snap *status.Snapshot, now time.Time) {
	outage := !snap.AllCoreOnline()
	affected := snap.AffectedServices()

	var (
		kind       EventKind
		n          *notify.Notification
		suppressed bool
	)

	ok := m.record(gen, func() {
		switch {
		case outage && !m.lastKnownOutage:
			kind = OutageStarted
			if cfg.EnableNotifications && !m.notificationSent {
				if m.gate.Allow(cfg.EnableNotificationAntiFlood) {
					m.notificationSent = true
					out := notify.NewOutageNotification(affected, cfg.StatusPageURL, m.opener)
					out.CreatedAt = now.UTC()
					n = &out
				} else {
					suppressed = true
				}
			}
		case !outage && m.lastKnownOutage:
			kind = OutageEnded
			if cfg.EnableNotifications {
				if m.gate.Allow(cfg.EnableNotificationAntiFlood) {
					rec := notify.NewRecoveryNotification(cfg.StatusPageURL, m.opener)
					rec.CreatedAt = now.UTC()
					n = &rec
				} else {
					suppressed = true
				}
			}
			m.notificationSent = false
		}

		m.lastKnownOutage = outage
		m.configured = true
		m.lastErr = nil
		m.lastTick = &now
		m.lastSuccess = &now
	})
	if !ok || kind == "" {
		return
	}

	m.metrics.Transitions.WithLabelValues(string(kind)).Inc()
	m.logger.Info("Availability changed", "transition", kind, "affected", affected)

	notified := false
	notificationKind := string(notify.KindOutage)
	if kind == OutageEnded {
		notificationKind = string(notify.KindRecovery)
	}

	switch {
	case n != nil:
		err := notify.SafeDispatch(ctx, m.dispatcher, *n)
		// A granted send counts against the ceiling even when some sinks failed.
		if cfg.EnableNotificationAntiFlood {
			m.gate.Record()
		}
		if err != nil {
			m.logger.Error("Failed to dispatch notification", "id", n.ID, "error", err)
			m.metrics.Notifications.WithLabelValues(notificationKind, notificationFailed).Inc()
		} else {
			m.metrics.Notifications.WithLabelValues(notificationKind, notificationSent).Inc()
		}
		notified = true
	case suppressed:
		m.logger.Warn("Notification suppressed by anti-flood limit", "transition", kind)
		m.metrics.Notifications.WithLabelValues(notificationKind, notificationSuppressed).Inc()
	default:
		m.metrics.Notifications.WithLabelValues(notificationKind, notificationDisabled).Inc()
	}

	m.publish(gen, Event{
		Kind:       kind,
		At:         now,
		Affected:   slices.Clone(affected),
		Notified:   notified,
		Suppressed: suppressed,
	})
}

// record applies fn to the monitor state if gen is still current, reporting whether it did.
func (m *Monitor) record(gen uint64, fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		return false
	}
	fn()

	return true
}

func (m *Monitor) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.generation == gen
}

func (m *Monitor) publish(gen uint64, ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != gen {
		return
	}

	for ch := range m.observers {
		select {
		case ch <- ev:
		default:
			m.logger.Warn("Subscriber buffer full, dropping event", "kind", ev.Kind)
		}
	}
}
