package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	steamerrors "github.com/steamstat/steamstat/internal/errors"
	"github.com/steamstat/steamstat/internal/gate"
	"github.com/steamstat/steamstat/internal/notify"
	"github.com/steamstat/steamstat/internal/settings"
	"github.com/steamstat/steamstat/internal/status"
)

type fakeSettings struct {
	mu  sync.Mutex
	s   settings.Settings
	err error
}

func (f *fakeSettings) Settings() (settings.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s, f.err
}

func (f *fakeSettings) update(fn func(s *settings.Settings)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.s)
}

type fetchResult struct {
	snap *status.Snapshot
	err  error
}

type fakeFetcher struct {
	mu      sync.Mutex
	next    fetchResult
	calls   int
	block   chan struct{}
	started chan struct{}
}

func (f *fakeFetcher) Fetch(_ context.Context, baseURL string, apiKey string) (*status.Snapshot, error) {
	f.mu.Lock()
	f.calls++
	block, started := f.block, f.started
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next.snap, f.next.err
}

func (f *fakeFetcher) set(snap *status.Snapshot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next = fetchResult{snap: snap, err: err}
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
	boom bool
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n notify.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.boom {
		panic("dispatcher exploded")
	}
	d.sent = append(d.sent, n)
	return d.err
}

func (d *recordingDispatcher) notifications() []notify.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]notify.Notification, len(d.sent))
	copy(out, d.sent)
	return out
}

type recordingStore struct {
	stored atomic.Int32
}

func (s *recordingStore) Store(string, *status.Snapshot) error {
	s.stored.Add(1)
	return nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	monitor    *Monitor
	settings   *fakeSettings
	fetcher    *fakeFetcher
	dispatcher *recordingDispatcher
	board      *status.Board
	clock      *testClock
	metrics    *Metrics
}

func configured() settings.Settings {
	s := settings.Defaults()
	s.GatewayURL = "https://gateway.example.com"
	s.GatewayAPIKey = "key"
	return s
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		settings:   &fakeSettings{s: configured()},
		fetcher:    &fakeFetcher{},
		dispatcher: &recordingDispatcher{},
		board:      status.NewBoard(),
		clock:      &testClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)},
		metrics:    NewMetrics(prometheus.NewRegistry()),
	}

	deps, err := NewDependencies(hclog.NewNullLogger(), h.settings, h.fetcher, h.dispatcher, h.board)
	require.NoError(t, err)

	all := append([]Option{WithClock(h.clock.Now), WithMetrics(h.metrics)}, opts...)
	h.monitor, err = NewMonitor(deps, all...)
	require.NoError(t, err)

	return h
}

// step sets the next fetch result and runs one tick in the current generation.
func (h *harness) step(snap *status.Snapshot, err error) {
	h.fetcher.set(snap, err)
	h.monitor.mu.Lock()
	gen := h.monitor.generation
	h.monitor.mu.Unlock()
	h.monitor.tick(gen)
	h.clock.Advance(CheckInterval)
}

func allOnline() *status.Snapshot {
	return &status.Snapshot{Services: map[string]status.Service{
		"store":     {Status: status.ServiceOnline},
		"community": {Status: status.ServiceOnline},
		"webapi":    {Status: status.ServiceOnline},
	}}
}

func degraded(names ...string) *status.Snapshot {
	snap := allOnline()
	for _, n := range names {
		snap.Services[n] = status.Service{Status: status.ServiceOffline}
	}
	return snap
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func TestMonitor_Alternation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	events, cancel := h.monitor.Subscribe()
	defer cancel()

	h.step(allOnline(), nil)
	h.step(degraded("webapi"), nil)
	h.step(allOnline(), nil)
	h.step(degraded("store", "community"), nil)
	h.step(allOnline(), nil)

	got := drain(events)
	require.Equal(t, []EventKind{OutageStarted, OutageEnded, OutageStarted, OutageEnded}, kinds(got))
	require.Equal(t, []string{"webapi"}, got[0].Affected)
	require.Equal(t, []string{"community", "store"}, got[2].Affected)

	sent := h.dispatcher.notifications()
	require.Len(t, sent, 4)
	require.Equal(t, "Services affected: webapi", sent[0].Body)
	require.Equal(t, notify.RecoveryTitle, sent[1].Title)
	require.Equal(t, "Services affected: community, store", sent[2].Body)

	require.Len(t, h.monitor.State().NotificationHistory, 4)
	require.Equal(t, float64(2), testutil.ToFloat64(h.metrics.Transitions.WithLabelValues(string(OutageStarted))))
}

func TestMonitor_ConstantAvailability(t *testing.T) {
	t.Parallel()

	t.Run("always online", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		events, cancel := h.monitor.Subscribe()
		defer cancel()

		for range 5 {
			h.step(allOnline(), nil)
		}

		require.Empty(t, drain(events))
		require.Empty(t, h.dispatcher.notifications())
		require.False(t, h.monitor.Outage())
	})

	t.Run("always down", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		events, cancel := h.monitor.Subscribe()
		defer cancel()

		for range 5 {
			h.step(degraded("webapi"), nil)
		}

		require.Equal(t, []EventKind{OutageStarted}, kinds(drain(events)))
		require.Len(t, h.dispatcher.notifications(), 1)
		require.True(t, h.monitor.Outage())
		require.True(t, h.monitor.NotificationSent())
	})
}

func TestMonitor_OutageContinuedRecovery(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	h.step(degraded("community"), nil)
	require.True(t, h.monitor.Outage())
	require.True(t, h.monitor.NotificationSent())

	h.step(degraded("community", "webapi"), nil)
	require.True(t, h.monitor.NotificationSent())
	require.Len(t, h.dispatcher.notifications(), 1, "a continuing outage must not notify again")

	h.step(allOnline(), nil)
	require.False(t, h.monitor.Outage())
	require.False(t, h.monitor.NotificationSent())

	sent := h.dispatcher.notifications()
	require.Len(t, sent, 2)
	require.Equal(t, notify.KindOutage, sent[0].Kind)
	require.Equal(t, notify.KindRecovery, sent[1].Kind)
}

func TestMonitor_FailedFetchPreservesState(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	events, cancel := h.monitor.Subscribe()
	defer cancel()

	h.step(degraded("webapi"), nil)
	h.step(nil, steamerrors.ErrFetchFailed)

	st := h.monitor.State()
	require.True(t, st.LastKnownOutage)
	require.True(t, st.NotificationSent)
	require.Contains(t, st.LastError, steamerrors.ErrFetchFailed.Error())

	h.step(degraded("webapi"), nil)

	require.Equal(t, []EventKind{OutageStarted}, kinds(drain(events)))
	require.Len(t, h.dispatcher.notifications(), 1)
	require.Empty(t, h.monitor.State().LastError)

	// The board keeps the last good snapshot through the failure.
	snap, _, err := h.board.Latest()
	require.NoError(t, err)
	require.False(t, snap.AllCoreOnline())

	require.Equal(t, float64(1), testutil.ToFloat64(h.metrics.Ticks.WithLabelValues(tickFailure)))
}

func TestMonitor_NilSnapshotIsFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.step(nil, nil)

	st := h.monitor.State()
	require.Contains(t, st.LastError, steamerrors.ErrInvalidSnapshot.Error())
	require.Nil(t, st.LastSuccess)
}

func TestMonitor_NotConfigured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(f *fakeSettings)
	}{
		{
			name:   "missing api key",
			mutate: func(f *fakeSettings) { f.s.GatewayAPIKey = "" },
		},
		{
			name:   "missing gateway url",
			mutate: func(f *fakeSettings) { f.s.GatewayURL = " " },
		},
		{
			name:   "malformed gateway url",
			mutate: func(f *fakeSettings) { f.s.GatewayURL = "gateway without scheme" },
		},
		{
			name:   "unreadable settings",
			mutate: func(f *fakeSettings) { f.err = errors.New("permission denied") },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			tc.mutate(h.settings)

			h.step(degraded("webapi"), nil)
			h.step(degraded("webapi"), nil)

			require.Zero(t, h.fetcher.callCount())
			st := h.monitor.State()
			require.False(t, st.Configured)
			require.Contains(t, st.LastError, steamerrors.ErrNotConfigured.Error())
			require.NotNil(t, st.LastTick)
			require.False(t, st.LastKnownOutage)
		})
	}
}

func TestMonitor_SettingsReadEveryTick(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.settings.update(func(s *settings.Settings) { s.GatewayAPIKey = "" })

	h.step(degraded("webapi"), nil)
	require.Zero(t, h.fetcher.callCount())

	h.settings.update(func(s *settings.Settings) { s.GatewayAPIKey = "now-set" })
	h.step(degraded("webapi"), nil)

	require.Equal(t, 1, h.fetcher.callCount())
	require.True(t, h.monitor.State().Configured)
	require.True(t, h.monitor.Outage())
}

func TestMonitor_NotificationsDisabled(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.settings.update(func(s *settings.Settings) { s.EnableNotifications = false })
	events, cancel := h.monitor.Subscribe()
	defer cancel()

	h.step(degraded("webapi"), nil)
	require.True(t, h.monitor.Outage())
	require.False(t, h.monitor.NotificationSent())

	h.step(allOnline(), nil)

	got := drain(events)
	require.Equal(t, []EventKind{OutageStarted, OutageEnded}, kinds(got))
	for _, ev := range got {
		require.False(t, ev.Notified)
		require.False(t, ev.Suppressed)
	}
	require.Empty(t, h.dispatcher.notifications())
	require.Empty(t, h.monitor.State().NotificationHistory)
}

func TestMonitor_GateSuppression(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	g, err := gate.NewGate(gate.WithCeiling(1), gate.WithClock(clock.Now))
	require.NoError(t, err)

	h := newHarness(t, WithGate(g))
	events, cancel := h.monitor.Subscribe()
	defer cancel()

	h.step(degraded("webapi"), nil)
	h.step(allOnline(), nil)

	got := drain(events)
	require.Equal(t, []EventKind{OutageStarted, OutageEnded}, kinds(got))
	require.True(t, got[0].Notified)
	require.True(t, got[1].Suppressed)
	require.False(t, got[1].Notified)

	// The recovery was suppressed but the state still follows availability.
	require.False(t, h.monitor.Outage())
	require.False(t, h.monitor.NotificationSent())
	require.Len(t, h.dispatcher.notifications(), 1)

	// A suppressed outage start leaves NotificationSent false.
	h.step(degraded("store"), nil)
	require.True(t, h.monitor.Outage())
	require.False(t, h.monitor.NotificationSent())

	clock.Advance(gate.DefaultWindow + time.Second)
	h.step(allOnline(), nil)
	require.Len(t, h.dispatcher.notifications(), 2)
	require.Equal(t, notify.KindRecovery, h.dispatcher.notifications()[1].Kind)
}

func TestMonitor_AntiFloodDisabledDoesNotRecord(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.settings.update(func(s *settings.Settings) { s.EnableNotificationAntiFlood = false })

	for range 15 {
		h.step(degraded("webapi"), nil)
		h.step(allOnline(), nil)
	}

	require.Len(t, h.dispatcher.notifications(), 30)
	require.Empty(t, h.monitor.State().NotificationHistory)
}

func TestMonitor_DispatchFailureStillFlips(t *testing.T) {
	t.Parallel()

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.dispatcher.err = errors.New("toaster unavailable")

		h.step(degraded("webapi"), nil)
		require.True(t, h.monitor.Outage())
		require.True(t, h.monitor.NotificationSent())
		require.Len(t, h.monitor.State().NotificationHistory, 1, "granted sends count even when dispatch fails")
	})

	t.Run("panic", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.dispatcher.boom = true

		require.NotPanics(t, func() { h.step(degraded("webapi"), nil) })
		require.True(t, h.monitor.Outage())

		h.step(allOnline(), nil)
		require.False(t, h.monitor.Outage())
		require.False(t, h.monitor.NotificationSent())
	})
}

func TestMonitor_PartialDispatchFailureCountsAgainstCeiling(t *testing.T) {
	t.Parallel()

	// The gate clock stays put so every send falls inside one window.
	frozen := &testClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	g, err := gate.NewGate(gate.WithCeiling(2), gate.WithClock(frozen.Now))
	require.NoError(t, err)

	delivered := &recordingDispatcher{}
	failing := &recordingDispatcher{err: errors.New("nats: connection closed")}

	h := newHarness(t)
	deps, err := NewDependencies(
		hclog.NewNullLogger(),
		h.settings,
		h.fetcher,
		notify.Fanout{delivered, failing},
		h.board,
	)
	require.NoError(t, err)
	h.monitor, err = NewMonitor(deps, WithClock(h.clock.Now), WithMetrics(h.metrics), WithGate(g))
	require.NoError(t, err)

	for range 10 {
		h.step(degraded("webapi"), nil)
		h.step(allOnline(), nil)
	}

	require.Len(t, delivered.notifications(), 2)
	require.Len(t, h.monitor.State().NotificationHistory, 2)
	require.Equal(t, 2.0, testutil.ToFloat64(h.metrics.Notifications.WithLabelValues("outage", notificationFailed))+
		testutil.ToFloat64(h.metrics.Notifications.WithLabelValues("recovery", notificationFailed)))
}

func TestMonitor_NotificationUsesMonitorClock(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	start := h.clock.Now()

	h.step(degraded("webapi"), nil)
	h.step(allOnline(), nil)

	sent := h.dispatcher.notifications()
	require.Len(t, sent, 2)
	require.Equal(t, start, sent[0].CreatedAt)
	require.Equal(t, start.Add(CheckInterval), sent[1].CreatedAt)
}

func TestMonitor_NotificationLink(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.settings.update(func(s *settings.Settings) { s.StatusPageURL = "https://status.example.com/steam" })

	h.step(degraded("webapi"), nil)

	sent := h.dispatcher.notifications()
	require.Len(t, sent, 1)
	require.Equal(t, "https://status.example.com/steam", sent[0].Link)
}

func TestMonitor_StoresSnapshots(t *testing.T) {
	t.Parallel()

	store := &recordingStore{}
	h := newHarness(t, WithSnapshotStore(store))

	h.step(allOnline(), nil)
	h.step(nil, steamerrors.ErrFetchFailed)
	h.step(allOnline(), nil)

	require.Equal(t, int32(2), store.stored.Load())
}

func TestMonitor_StartStopIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(t, WithInterval(time.Hour))
	h.fetcher.set(allOnline(), nil)

	h.monitor.Stop()
	require.False(t, h.monitor.Running())

	h.monitor.Start()
	h.monitor.Start()
	require.True(t, h.monitor.Running())

	require.Eventually(t, func() bool {
		return h.fetcher.callCount() == 1
	}, 5*time.Second, 10*time.Millisecond, "first tick runs immediately")

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, h.fetcher.callCount(), "a second Start must not create a second loop")

	events, _ := h.monitor.Subscribe()

	h.monitor.Stop()
	h.monitor.Stop()
	require.False(t, h.monitor.Running())

	_, open := <-events
	require.False(t, open, "subscribers are closed on Stop")
}

func TestMonitor_DiscardsResultAfterStop(t *testing.T) {
	t.Parallel()

	h := newHarness(t, WithInterval(time.Hour))
	h.fetcher.block = make(chan struct{})
	h.fetcher.started = make(chan struct{}, 1)
	h.fetcher.set(degraded("webapi"), nil)

	h.monitor.Start()

	select {
	case <-h.fetcher.started:
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not start")
	}

	h.monitor.Stop()
	close(h.fetcher.block)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.metrics.Ticks.WithLabelValues(tickDiscarded)) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.False(t, h.monitor.Outage())
	require.Empty(t, h.dispatcher.notifications())
	_, _, err := h.board.Latest()
	require.ErrorIs(t, err, steamerrors.ErrNoSnapshot)
}

func TestMonitor_OverlappingTickSkipped(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.monitor.busy.Store(true)

	h.step(degraded("webapi"), nil)

	require.Zero(t, h.fetcher.callCount())
	require.Equal(t, float64(1), testutil.ToFloat64(h.metrics.Ticks.WithLabelValues(tickSkipped)))
}

func TestMonitor_SubscribeCancel(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	events, cancel := h.monitor.Subscribe()
	cancel()
	cancel()

	_, open := <-events
	require.False(t, open)

	// Publishing after cancel must not panic.
	require.NotPanics(t, func() { h.step(degraded("webapi"), nil) })
}

func TestMonitor_Run(t *testing.T) {
	t.Parallel()

	h := newHarness(t, WithInterval(time.Hour))
	h.fetcher.set(allOnline(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.monitor.Run(ctx) }()

	require.Eventually(t, h.monitor.Running, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	require.False(t, h.monitor.Running())
}

func TestNewDependencies(t *testing.T) {
	t.Parallel()

	board := status.NewBoard()
	tests := []struct {
		name       string
		logger     hclog.Logger
		settings   SettingsProvider
		fetcher    Fetcher
		dispatcher notify.Dispatcher
		board      *status.Board
		wantErr    string
	}{
		{
			name:       "valid",
			logger:     hclog.NewNullLogger(),
			settings:   &fakeSettings{},
			fetcher:    &fakeFetcher{},
			dispatcher: &recordingDispatcher{},
			board:      board,
		},
		{
			name:       "nil logger",
			settings:   &fakeSettings{},
			fetcher:    &fakeFetcher{},
			dispatcher: &recordingDispatcher{},
			board:      board,
			wantErr:    "logger cannot be nil",
		},
		{
			name:       "typed nil settings",
			logger:     hclog.NewNullLogger(),
			settings:   (*fakeSettings)(nil),
			fetcher:    &fakeFetcher{},
			dispatcher: &recordingDispatcher{},
			board:      board,
			wantErr:    "settings provider cannot be nil",
		},
		{
			name:       "nil fetcher",
			logger:     hclog.NewNullLogger(),
			settings:   &fakeSettings{},
			dispatcher: &recordingDispatcher{},
			board:      board,
			wantErr:    "fetcher cannot be nil",
		},
		{
			name:     "nil dispatcher",
			logger:   hclog.NewNullLogger(),
			settings: &fakeSettings{},
			fetcher:  &fakeFetcher{},
			board:    board,
			wantErr:  "dispatcher cannot be nil",
		},
		{
			name:       "nil board",
			logger:     hclog.NewNullLogger(),
			settings:   &fakeSettings{},
			fetcher:    &fakeFetcher{},
			dispatcher: &recordingDispatcher{},
			wantErr:    "status board cannot be nil",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewDependencies(tc.logger, tc.settings, tc.fetcher, tc.dispatcher, tc.board)
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions()
	require.NoError(t, err)
	require.Equal(t, 60*time.Second, opts.Interval)
	require.Equal(t, 10*time.Second, opts.FetchTimeout)

	_, err = NewOptions(WithInterval(0))
	require.Error(t, err)

	_, err = NewOptions(WithFetchTimeout(-time.Second))
	require.Error(t, err)

	_, err = NewOptions(WithGate(nil))
	require.Error(t, err)

	_, err = NewOptions(WithClock(nil))
	require.Error(t, err)
}
