package status

import (
	"slices"
	"time"
)

const (
	ServiceOnline   ServiceStatus = "online"
	ServiceDegraded ServiceStatus = "degraded"
	ServiceOffline  ServiceStatus = "offline"
)

const (
	OutageTypeOutage    OutageType = "outage"
	OutageTypeDegraded  OutageType = "degraded"
	OutageTypeRecovered OutageType = "recovered"
)

// ServiceStatus is the availability reported for a single service or region.
type ServiceStatus string

// OutageType classifies an entry in the recent outage log.
type OutageType string

// Snapshot is the decoded result of one successful poll of the status endpoint.
// Snapshots are not modified after decoding and may be shared between goroutines.
type Snapshot struct {
	// Online is the usage count reported by the gateway (players online).
	Online int64 `json:"online" yaml:"online"`

	// Services maps a core service name (e.g. 'store', 'community', 'webapi') to its status.
	Services map[string]Service `json:"services" yaml:"services"`

	// Regions holds regional connection manager status. Regions never affect AllCoreOnline.
	Regions []Region `json:"cm_regions,omitempty" yaml:"cm_regions,omitempty"`

	History       []HistoryEntry `json:"history,omitempty"        yaml:"history,omitempty"`
	TrendingGames []TrendingGame `json:"trending_games,omitempty" yaml:"trending_games,omitempty"`
	Cache         *CacheInfo     `json:"cache,omitempty"          yaml:"cache,omitempty"`

	// Timestamp is the gateway's freshness indicator for the snapshot.
	Timestamp string `json:"timestamp" yaml:"timestamp"`

	// RecentOutages is the gateway's outage log, newest first.
	RecentOutages []OutageEntry `json:"recent_outages,omitempty" yaml:"recent_outages,omitempty"`
}

type Service struct {
	Status         ServiceStatus `json:"status"                     yaml:"status"`
	ResponseTimeMs float64       `json:"response_time_ms,omitempty" yaml:"response_time_ms,omitempty"`
}

// Region describes a regional connection manager.
type Region struct {
	Region         string        `json:"region"           yaml:"region"`
	Country        string        `json:"country"          yaml:"country"`
	Flag           string        `json:"flag"             yaml:"flag"`
	Status         ServiceStatus `json:"status"           yaml:"status"`
	ResponseTimeMs float64       `json:"response_time_ms" yaml:"response_time_ms"`
	ServerCount    int           `json:"server_count"     yaml:"server_count"`
}

type HistoryEntry struct {
	Timestamp     string `json:"timestamp"       yaml:"timestamp"`
	Online        int64  `json:"online"          yaml:"online"`
	AllServicesUp bool   `json:"all_services_up" yaml:"all_services_up"`
}

type TrendingGame struct {
	AppID          int64   `json:"appid"           yaml:"appid"`
	Name           string  `json:"name"            yaml:"name"`
	CurrentPlayers int64   `json:"current_players" yaml:"current_players"`
	Gain48h        int64   `json:"gain_48h"        yaml:"gain_48h"`
	GainPercent    float64 `json:"gain_percent"    yaml:"gain_percent"`
}

// CacheInfo is the gateway's own cache metadata for the snapshot.
type CacheInfo struct {
	LastFetch          string  `json:"last_fetch"           yaml:"last_fetch"`
	AgeSeconds         float64 `json:"age_seconds"          yaml:"age_seconds"`
	NextRefreshSeconds float64 `json:"next_refresh_seconds" yaml:"next_refresh_seconds"`
}

// OutageEntry is one record in the gateway's outage log.
type OutageEntry struct {
	Timestamp string     `json:"timestamp"         yaml:"timestamp"`
	Type      OutageType `json:"type"              yaml:"type"`
	Service   string     `json:"service,omitempty" yaml:"service,omitempty"`
	Message   string     `json:"message,omitempty" yaml:"message,omitempty"`

	// IsRegional marks entries about regional connection managers rather than core services.
	IsRegional bool `json:"is_cm,omitempty" yaml:"is_cm,omitempty"`
}

// AllCoreOnline reports whether every core service is online.
// A nil snapshot or one without services is never considered online.
func (s *Snapshot) AllCoreOnline() bool {
	if s == nil || len(s.Services) == 0 {
		return false
	}
	for _, svc := range s.Services {
		if svc.Status != ServiceOnline {
			return false
		}
	}
	return true
}

// AffectedServices returns the sorted names of core services that are not online.
func (s *Snapshot) AffectedServices() []string {
	if s == nil {
		return nil
	}

	var names []string
	for name, svc := range s.Services {
		if svc.Status != ServiceOnline {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	return names
}

// ServiceNames returns every core service name in sorted order.
func (s *Snapshot) ServiceNames() []string {
	if s == nil {
		return nil
	}

	names := make([]string, 0, len(s.Services))
	for name := range s.Services {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// ParseTimestamp parses a gateway timestamp.
// RFC 3339 is expected; timestamps without a zone are treated as UTC.
func ParseTimestamp(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", v, time.UTC)
}
