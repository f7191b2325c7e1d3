package settings

import (
	"strings"
	"time"
)

var (
	_ Provider = (*DefaultLoader)(nil)
	_ Modifier = (*File)(nil)
)

type Loader interface {
	Load(path string) (Modifier, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

// Modifier reads and updates a loaded settings file.
type Modifier interface {
	// Settings returns the resolved settings, defaults applied.
	Settings() Settings

	// Get returns the string form of a single setting.
	Get(key Key) (string, error)

	// Set parses, validates and persists a single setting.
	Set(key Key, value string) error

	// Reset restores every setting to its default and persists the result.
	Reset() error
}

type DefaultLoader struct{}

// Settings holds the resolved plugin settings.
// Values are read fresh on every monitor tick, so changes apply without a restart.
type Settings struct {
	// GatewayURL is the base URL of the status gateway, e.g. 'https://status.example.com:18888'.
	GatewayURL string `json:"gatewayUrl" yaml:"gateway_url"`

	// GatewayAPIKey is sent as the X-API-Key header.
	GatewayAPIKey string `json:"-" yaml:"-"`

	// StatusPageURL is opened when a notification is activated.
	StatusPageURL string `json:"statusPageUrl" yaml:"status_page_url"`

	// RefreshIntervalSeconds is the display refresh cadence for UI clients.
	// It never affects the background monitor cadence.
	RefreshIntervalSeconds int `json:"refreshIntervalSeconds" yaml:"refresh_interval_seconds"`

	ShowHistory       bool `json:"showHistory"       yaml:"show_history"`
	ShowRegions       bool `json:"showRegions"       yaml:"show_regions"`
	ShowTrendingGames bool `json:"showTrendingGames" yaml:"show_trending_games"`

	// EnableNotifications toggles outage and recovery notifications.
	EnableNotifications bool `json:"enableNotifications" yaml:"enable_notifications"`

	// EnableNotificationAntiFlood toggles the notification rate limit.
	EnableNotificationAntiFlood bool `json:"enableNotificationAntiflood" yaml:"enable_notification_antiflood"`

	// NATSURL optionally forwards notifications to a NATS server.
	NATSURL string `json:"natsUrl,omitempty" yaml:"nats_url,omitempty"`

	// NATSSubject is the subject notifications are published on.
	NATSSubject string `json:"natsSubject,omitempty" yaml:"nats_subject,omitempty"`
}

// Configured reports whether both the gateway URL and API key are present.
func (s Settings) Configured() bool {
	return strings.TrimSpace(s.GatewayURL) != "" && strings.TrimSpace(s.GatewayAPIKey) != ""
}

// RefreshInterval returns RefreshIntervalSeconds as a duration.
func (s Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalSeconds) * time.Second
}

// File represents the settings file structure.
// Pointer fields distinguish unset values from zero values so defaults can be merged in.
//
// NOTE: if you add/remove fields you must review keySpecs and Defaults.
type File struct {
	GatewayURL                  *string `toml:"gateway_url,omitempty"`
	GatewayAPIKey               *string `toml:"gateway_api_key,omitempty"`
	StatusPageURL               *string `toml:"status_page_url,omitempty"`
	RefreshIntervalSeconds      *int    `toml:"refresh_interval_seconds,omitempty"`
	ShowHistory                 *bool   `toml:"show_history,omitempty"`
	ShowRegions                 *bool   `toml:"show_regions,omitempty"`
	ShowTrendingGames           *bool   `toml:"show_trending_games,omitempty"`
	EnableNotifications         *bool   `toml:"enable_notifications,omitempty"`
	EnableNotificationAntiFlood *bool   `toml:"enable_notification_antiflood,omitempty"`
	NATSURL                     *string `toml:"nats_url,omitempty"`
	NATSSubject                 *string `toml:"nats_subject,omitempty"`

	filePath string `toml:"-"`
}
