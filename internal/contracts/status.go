package contracts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/steamstat/steamstat/internal/monitor"
	"github.com/steamstat/steamstat/internal/notify"
	"github.com/steamstat/steamstat/internal/settings"
	"github.com/steamstat/steamstat/internal/status"
)

// MonitorStateReader provides read access to the background monitor.
type MonitorStateReader interface {
	// State returns a copy of the current monitor state.
	State() monitor.State
}

// StatusReader provides the last snapshot fetched by any path.
type StatusReader interface {
	// Reading returns a copy of the current board reading.
	Reading() status.Reading

	// Latest returns the most recent snapshot and when it was fetched.
	Latest() (*status.Snapshot, time.Time, error)
}

// StatusRefresher performs an on demand fetch without touching monitor state.
type StatusRefresher interface {
	Refresh(ctx context.Context) (status.Reading, error)
}

// NotificationInbox provides access to recently dispatched notifications.
type NotificationInbox interface {
	// List returns retained notifications, newest first.
	List() []notify.Notification

	// Activate runs the activation action of a retained notification.
	Activate(id uuid.UUID) (notify.Notification, error)
}

// SettingsReader supplies the current settings.
type SettingsReader interface {
	Settings() (settings.Settings, error)
}
