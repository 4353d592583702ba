package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FinderMetrics holds Prometheus metrics for the address finder flow.
// It satisfies session.Recorder.
type FinderMetrics struct {
	Lookups        *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	Submissions    *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
}

// NewFinderMetrics creates the finder metrics and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewFinderMetrics(namespace string, reg prometheus.Registerer) *FinderMetrics {
	if namespace == "" {
		namespace = "addressbook"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	subsystem := "finder"

	return &FinderMetrics{
		Lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lookups_total",
				Help:      "Total address lookups by outcome",
			},
			[]string{"outcome"}, // outcome: ok, service_error, fetch_failed, stale
		),
		LookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lookup_duration_seconds",
				Help:      "Address lookup latency in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "submissions_total",
				Help:      "Total address book submissions by outcome",
			},
			[]string{"outcome"}, // outcome: ok, no_selection, not_found, error
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "active_sessions",
				Help:      "Finder sessions currently held in memory",
			},
		),
	}
}

// LookupFinished records one lookup.
func (m *FinderMetrics) LookupFinished(outcome string, duration time.Duration) {
	m.Lookups.WithLabelValues(outcome).Inc()
	m.LookupDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// SubmitFinished records one submission.
func (m *FinderMetrics) SubmitFinished(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// SetActiveSessions updates the active session gauge.
func (m *FinderMetrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}
