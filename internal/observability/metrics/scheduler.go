// Package metrics provides custom Prometheus metrics for the blazebot
// application components.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics contains all Prometheus metrics related to the trigger
// scanner and fan-out.
type SchedulerMetrics struct {
	TriggerFires     prometheus.Counter
	LedgerFailures   prometheus.Counter
	Announcements    prometheus.Counter
	FanOutFailures   prometheus.Counter
	PepperDrops      prometheus.Counter
	ScheduledCheers  prometheus.Counter
	TickDuration     prometheus.Histogram
}

// NewSchedulerMetrics creates a new instance of SchedulerMetrics registered
// on the given registry.
func NewSchedulerMetrics(registry *prometheus.Registry) (*SchedulerMetrics, error) {
	m := &SchedulerMetrics{
		TriggerFires: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_trigger_fires_total",
			Help: "Total number of 4:20 trigger fires across all zones",
		}),
		LedgerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_ledger_failures_total",
			Help: "Total number of trigger ledger write failures",
		}),
		Announcements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_announcements_total",
			Help: "Total number of 4:20 announcements sent to guild channels",
		}),
		FanOutFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_fanout_failures_total",
			Help: "Total number of per-guild fan-out failures",
		}),
		PepperDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_pepper_drops_total",
			Help: "Total number of pepper drop events posted",
		}),
		ScheduledCheers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_scheduled_cheers_total",
			Help: "Total number of scheduled cheers delivered",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_tick_duration_seconds",
			Help:    "Duration of one scheduler tick over all zones and guilds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	collectors := []prometheus.Collector{
		m.TriggerFires, m.LedgerFailures, m.Announcements,
		m.FanOutFailures, m.PepperDrops, m.ScheduledCheers, m.TickDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register scheduler metrics: %w", err)
		}
	}
	return m, nil
}
