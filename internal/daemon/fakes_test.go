package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/steamstat/steamstat/internal/errors"
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

type fakeFetcher struct {
	mu    sync.Mutex
	snap  *status.Snapshot
	err   error
	calls int
}

func (f *fakeFetcher) set(snap *status.Snapshot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap, f.err = snap, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) Fetch(context.Context, string, string) (*status.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snap, f.err
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

func (c *memCache) stored(gatewayURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[gatewayURL]
	return ok
}

func outageSnapshot() *status.Snapshot {
	snap := onlineSnapshot()
	snap.Services["store"] = status.Service{Status: status.ServiceOffline}
	return snap
}

func configuredSettings() settings.Settings {
	s := settings.Defaults()
	s.GatewayURL = "https://gateway.example.com"
	s.GatewayAPIKey = "key"
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
