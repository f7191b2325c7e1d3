// Package outage derives display summaries of service outages from status snapshots.
package outage

import (
	"slices"
	"time"

	"github.com/steamstat/steamstat/internal/status"
)

// RecentWindow is how far back an outage log entry counts as recent.
const RecentWindow = 60 * time.Minute

// Summary describes current and recent outages for display.
type Summary struct {
	// HasCurrentOutage is true when any core service is not online in the snapshot.
	HasCurrentOutage bool `json:"hasCurrentOutage" yaml:"has_current_outage"`

	// HadRecentOutage is true when OutageCount is greater than zero.
	HadRecentOutage bool `json:"hadRecentOutage" yaml:"had_recent_outage"`

	// OutageCount is the number of qualifying log entries within RecentWindow.
	OutageCount int `json:"outageCount" yaml:"outage_count"`

	// LastOutageTime is the time of the newest qualifying log entry.
	LastOutageTime *time.Time `json:"lastOutageTime,omitempty" yaml:"last_outage_time,omitempty"`
}

// Summarize derives a Summary from snap as of now.
//
// Log entries count when they are no older than RecentWindow, are not recoveries
// and are not about regional connection managers. Entries with unparseable timestamps are skipped.
// A nil snapshot yields the zero Summary.
func Summarize(snap *status.Snapshot, now time.Time) Summary {
	if snap == nil {
		return Summary{}
	}

	cutoff := now.Add(-RecentWindow)

	var times []time.Time
	for _, entry := range snap.RecentOutages {
		if entry.Type == status.OutageTypeRecovered || entry.IsRegional {
			continue
		}

		at, err := status.ParseTimestamp(entry.Timestamp)
		if err != nil {
			continue
		}
		if at.Before(cutoff) {
			continue
		}

		times = append(times, at)
	}

	// Newest first, the log order from the gateway is not relied upon.
	slices.SortFunc(times, func(a, b time.Time) int {
		return b.Compare(a)
	})

	summary := Summary{
		HasCurrentOutage: !snap.AllCoreOnline(),
		OutageCount:      len(times),
		HadRecentOutage:  len(times) > 0,
	}
	if len(times) > 0 {
		last := times[0]
		summary.LastOutageTime = &last
	}

	return summary
}
