package daemon

import (
	"fmt"
	"reflect"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/steamstat/steamstat/internal/monitor"
	"github.com/steamstat/steamstat/internal/status"
)

// SnapshotCache persists the last known snapshot between runs.
type SnapshotCache interface {
	monitor.SnapshotStore

	// Load returns the cached snapshot for a gateway and when it was stored.
	Load(gatewayURL string) (*status.Snapshot, time.Time, error)
}

// Dependencies contains required dependencies for the Daemon.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// APIAddr specifies the network address for the APIServer to bind (e.g., "0.0.0.0:8090").
	APIAddr string

	// Logger for daemon and subcomponent (monitor, API server) operations.
	Logger hclog.Logger

	// Settings is re-read by the monitor on every tick.
	Settings monitor.SettingsProvider

	// Fetcher retrieves snapshots from the status gateway.
	Fetcher monitor.Fetcher

	// Cache stores fetched snapshots and seeds the status board on startup.
	Cache SnapshotCache
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(
	logger hclog.Logger,
	apiAddr string,
	settingsProvider monitor.SettingsProvider,
	fetcher monitor.Fetcher,
	cache SnapshotCache,
) (Dependencies, error) {
	deps := Dependencies{
		APIAddr:  apiAddr,
		Logger:   logger,
		Settings: settingsProvider,
		Fetcher:  fetcher,
		Cache:    cache,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}

	if err := validateAddr(d.APIAddr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.APIAddr, err)
	}

	if d.Settings == nil || reflect.ValueOf(d.Settings).IsNil() {
		return fmt.Errorf("settings provider cannot be nil")
	}

	if d.Fetcher == nil || reflect.ValueOf(d.Fetcher).IsNil() {
		return fmt.Errorf("fetcher cannot be nil")
	}

	if d.Cache == nil || reflect.ValueOf(d.Cache).IsNil() {
		return fmt.Errorf("snapshot cache cannot be nil")
	}

	return nil
}
