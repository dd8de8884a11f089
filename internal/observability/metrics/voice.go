package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// VoiceMetrics contains all Prometheus metrics related to voice playback.
type VoiceMetrics struct {
	CheersPlayed     prometheus.Counter
	PlaybackFailures *prometheus.CounterVec
	RetryAttempts    prometheus.Counter
	BackupRestores   prometheus.Counter
	BackupCaptures   prometheus.Counter
	PlaybackDuration prometheus.Histogram
}

// NewVoiceMetrics creates a new instance of VoiceMetrics registered on the
// given registry.
func NewVoiceMetrics(registry *prometheus.Registry) (*VoiceMetrics, error) {
	m := &VoiceMetrics{
		CheersPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voice_cheers_played_total",
			Help: "Total number of cheers played to completion",
		}),
		PlaybackFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_playback_failures_total",
			Help: "Total number of playback failures by error kind",
		}, []string{"kind"}),
		RetryAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voice_retry_attempts_total",
			Help: "Total number of reconnect-and-retry attempts",
		}),
		BackupRestores: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voice_backup_restores_total",
			Help: "Total number of clip files rehydrated from the backup store",
		}),
		BackupCaptures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voice_backup_captures_total",
			Help: "Total number of clip files captured into the backup store",
		}),
		PlaybackDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_playback_duration_seconds",
			Help:    "End-to-end duration of one playback invocation",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}

	collectors := []prometheus.Collector{
		m.CheersPlayed, m.PlaybackFailures, m.RetryAttempts,
		m.BackupRestores, m.BackupCaptures, m.PlaybackDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register voice metrics: %w", err)
		}
	}
	return m, nil
}
