package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/steamstat/steamstat/internal/errors"
	"github.com/steamstat/steamstat/internal/settings"
	"github.com/steamstat/steamstat/internal/status"
)

// fakeLoader implements settings.Loader and settings.Initializer.
type fakeLoader struct {
	mod     *fakeModifier
	err     error
	initErr error

	mu       sync.Mutex
	initPath string
}

func (l *fakeLoader) Load(string) (settings.Modifier, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.mod, nil
}

func (l *fakeLoader) Init(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initPath = path
	return l.initErr
}

// fakeModifier implements settings.Modifier on top of a resolved Settings value.
type fakeModifier struct {
	s      settings.Settings
	values map[settings.Key]string
	setErr error
	reset  bool
}

func newFakeModifier(s settings.Settings) *fakeModifier {
	return &fakeModifier{
		s: s,
		values: map[settings.Key]string{
			settings.KeyGatewayURL:    s.GatewayURL,
			settings.KeyGatewayAPIKey: s.GatewayAPIKey,
			settings.KeyNATSSubject:   s.NATSSubject,
		},
	}
}

func (m *fakeModifier) Settings() settings.Settings {
	return m.s
}

func (m *fakeModifier) Get(key settings.Key) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", settings.ErrInvalidKey
	}
	return v, nil
}

func (m *fakeModifier) Set(key settings.Key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *fakeModifier) Reset() error {
	m.reset = true
	return nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	snap  *status.Snapshot
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context, string, string) (*status.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snap, f.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memCache struct {
	mu       sync.Mutex
	entries  map[string]*status.Snapshot
	cachedAt time.Time
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*status.Snapshot)}
}

func (c *memCache) Store(gatewayURL string, snap *status.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[gatewayURL] = snap
	return nil
}

func (c *memCache) Load(gatewayURL string) (*status.Snapshot, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.entries[gatewayURL]
	if !ok {
		return nil, time.Time{}, errors.ErrNoSnapshot
	}
	return snap, c.cachedAt, nil
}

func configuredSettings() settings.Settings {
	s := settings.Defaults()
	s.GatewayURL = "https://gateway.example.com"
	s.GatewayAPIKey = "secret-key"
	return s
}

func onlineSnapshot() *status.Snapshot {
	return &status.Snapshot{
		Online: 30_000_000,
		Services: map[string]status.Service{
			"store":     {Status: status.ServiceOnline},
			"community": {Status: status.ServiceOnline},
		},
	}
}
