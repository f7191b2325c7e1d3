package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/steamstat/steamstat/internal/status"
)

const (
	tickSuccess       = "success"
	tickFailure       = "failure"
	tickNotConfigured = "not_configured"
	tickSkipped       = "skipped"
	tickDiscarded     = "discarded"

	notificationSent       = "sent"
	notificationSuppressed = "suppressed"
	notificationFailed     = "failed"
	notificationDisabled   = "disabled"
)

// Metrics bundles prometheus collectors used by the monitor.
type Metrics struct {
	Ticks         *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	Transitions   *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	Outage        prometheus.Gauge
	ServiceUp     *prometheus.GaugeVec
	Online        prometheus.Gauge
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "steamstat_monitor_ticks_total",
			Help: "Total number of monitor ticks by result.",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "steamstat_monitor_fetch_duration_seconds",
			Help:    "Duration of status fetches made by the monitor.",
			Buckets: prometheus.DefBuckets,
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "steamstat_monitor_transitions_total",
			Help: "Total number of availability transitions by kind.",
		}, []string{"kind"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "steamstat_notifications_total",
			Help: "Total number of notification decisions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		Outage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "steamstat_outage",
			Help: "1 while the last fetched snapshot shows a core service not online.",
		}),
		ServiceUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "steamstat_service_up",
			Help: "1 when the service was online in the last fetched snapshot.",
		}, []string{"service"}),
		Online: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "steamstat_online_users",
			Help: "Usage count reported by the last fetched snapshot.",
		}),
	}

	registry.MustRegister(
		m.Ticks,
		m.FetchDuration,
		m.Transitions,
		m.Notifications,
		m.Outage,
		m.ServiceUp,
		m.Online,
	)

	return m
}

func (m *Metrics) observeSnapshot(snap *status.Snapshot) {
	if snap.AllCoreOnline() {
		m.Outage.Set(0)
	} else {
		m.Outage.Set(1)
	}

	for name, svc := range snap.Services {
		up := 0.0
		if svc.Status == status.ServiceOnline {
			up = 1
		}
		m.ServiceUp.WithLabelValues(name).Set(up)
	}

	m.Online.Set(float64(snap.Online))
}
