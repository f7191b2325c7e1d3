package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/steamstat/steamstat/internal/cmd/output"
	"github.com/steamstat/steamstat/internal/outage"
	"github.com/steamstat/steamstat/internal/status"
)

var _ output.Printer[StatusReport] = (*StatusPrinter)(nil)

// maxHistoryRows bounds how many history entries are printed.
const maxHistoryRows = 5

// StatusReport is what the status command renders for one snapshot.
type StatusReport struct {
	FetchedAt time.Time        `json:"fetchedAt"          yaml:"fetched_at"`
	Cached    bool             `json:"cached"             yaml:"cached"`
	AllOnline bool             `json:"allOnline"          yaml:"all_online"`
	Affected  []string         `json:"affected"           yaml:"affected"`
	Outages   outage.Summary   `json:"outages"            yaml:"outages"`
	Snapshot  *status.Snapshot `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

// NewStatusReport summarizes snap as of now.
func NewStatusReport(snap *status.Snapshot, fetchedAt time.Time, cached bool, now time.Time) StatusReport {
	affected := snap.AffectedServices()
	if affected == nil {
		affected = []string{}
	}

	return StatusReport{
		FetchedAt: fetchedAt.UTC(),
		Cached:    cached,
		AllOnline: snap.AllCoreOnline(),
		Affected:  affected,
		Outages:   outage.Summarize(snap, now),
		Snapshot:  snap,
	}
}

// StatusPrinter renders a StatusReport as text, honoring the display toggles from settings.
type StatusPrinter struct {
	showRegions  bool
	showHistory  bool
	showTrending bool
}

func NewStatusPrinter(showRegions bool, showHistory bool, showTrending bool) *StatusPrinter {
	return &StatusPrinter{
		showRegions:  showRegions,
		showHistory:  showHistory,
		showTrending: showTrending,
	}
}

func (p *StatusPrinter) Header(io.Writer, int) {}

func (p *StatusPrinter) Footer(io.Writer, int) {}

func (p *StatusPrinter) Item(w io.Writer, r StatusReport) error {
	if r.Snapshot == nil {
		return fmt.Errorf("status report has no snapshot")
	}
	snap := r.Snapshot

	headline := "✅ All Steam services online"
	if !r.AllOnline {
		headline = "⚠️  Steam services affected: " + strings.Join(r.Affected, ", ")
	}
	_, _ = fmt.Fprintln(w, headline)

	source := "fetched"
	if r.Cached {
		source = "cached"
	}
	_, _ = fmt.Fprintf(w, "  Online: %d (%s %s)\n", snap.Online, source, r.FetchedAt.Format(time.RFC3339))

	switch {
	case r.Outages.HadRecentOutage && r.Outages.LastOutageTime != nil:
		_, _ = fmt.Fprintf(
			w,
			"  Recent outages: %d in the last %s, latest at %s\n",
			r.Outages.OutageCount,
			outage.RecentWindow,
			r.Outages.LastOutageTime.UTC().Format(time.RFC3339),
		)
	case r.Outages.HadRecentOutage:
		_, _ = fmt.Fprintf(w, "  Recent outages: %d in the last %s\n", r.Outages.OutageCount, outage.RecentWindow)
	}

	_, _ = fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  SERVICE\tSTATUS\tRESPONSE")
	for _, name := range snap.ServiceNames() {
		svc := snap.Services[name]
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\n", name, svc.Status, responseTime(svc.ResponseTimeMs))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if p.showRegions && len(snap.Regions) > 0 {
		_, _ = fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "  REGION\tSTATUS\tRESPONSE\tSERVERS")
		for _, region := range snap.Regions {
			_, _ = fmt.Fprintf(
				tw,
				"  %s %s\t%s\t%s\t%d\n",
				region.Flag,
				region.Region,
				region.Status,
				responseTime(region.ResponseTimeMs),
				region.ServerCount,
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if p.showHistory && len(snap.History) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "  History:")
		history := snap.History
		if len(history) > maxHistoryRows {
			history = history[len(history)-maxHistoryRows:]
		}
		for _, h := range history {
			mark := "up"
			if !h.AllServicesUp {
				mark = "down"
			}
			_, _ = fmt.Fprintf(w, "    %s  %d online, %s\n", h.Timestamp, h.Online, mark)
		}
	}

	if p.showTrending && len(snap.TrendingGames) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "  Trending:")
		for _, g := range snap.TrendingGames {
			_, _ = fmt.Fprintf(w, "    %s  %d players (%+.1f%%)\n", g.Name, g.CurrentPlayers, g.GainPercent)
		}
	}

	return nil
}

func responseTime(ms float64) string {
	if ms <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0fms", ms)
}
