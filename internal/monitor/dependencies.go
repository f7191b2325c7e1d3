package monitor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/steamstat/steamstat/internal/notify"
	"github.com/steamstat/steamstat/internal/settings"
	"github.com/steamstat/steamstat/internal/status"
)

// SettingsProvider supplies the current settings, read fresh on every tick.
type SettingsProvider interface {
	Settings() (settings.Settings, error)
}

// Fetcher performs one fetch of the status endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, baseURL string, apiKey string) (*status.Snapshot, error)
}

// SnapshotStore persists successfully fetched snapshots per gateway.
type SnapshotStore interface {
	Store(gatewayURL string, snap *status.Snapshot) error
}

// Dependencies contains required dependencies for the Monitor.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// Logger for monitor operations.
	Logger hclog.Logger

	// Settings is read at the start of every tick.
	Settings SettingsProvider

	// Fetcher retrieves snapshots from the gateway.
	Fetcher Fetcher

	// Dispatcher delivers outage and recovery notifications.
	Dispatcher notify.Dispatcher

	// Board receives every fetch result for display surfaces.
	Board *status.Board
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(
	logger hclog.Logger,
	settingsProvider SettingsProvider,
	fetcher Fetcher,
	dispatcher notify.Dispatcher,
	board *status.Board,
) (Dependencies, error) {
	deps := Dependencies{
		Logger:     logger,
		Settings:   settingsProvider,
		Fetcher:    fetcher,
		Dispatcher: dispatcher,
		Board:      board,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided.
func (d Dependencies) Validate() error {
	if isNil(d.Logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	if isNil(d.Settings) {
		return fmt.Errorf("settings provider cannot be nil")
	}
	if isNil(d.Fetcher) {
		return fmt.Errorf("fetcher cannot be nil")
	}
	if isNil(d.Dispatcher) {
		return fmt.Errorf("dispatcher cannot be nil")
	}
	if d.Board == nil {
		return fmt.Errorf("status board cannot be nil")
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
