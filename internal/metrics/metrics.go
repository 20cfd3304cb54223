// Package metrics counts bulk run outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeDiscarded = "discarded"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

// Metrics holds the collectors of the bulk pipeline.
type Metrics struct {
	records  *prometheus.CounterVec
	duration prometheus.Histogram
	inFlight prometheus.Gauge
}

// New registers the collectors on reg. Pass a fresh prometheus.NewRegistry()
// per pool in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sip_records_total",
			Help: "Records processed by the mapping pipeline, by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sip_record_duration_seconds",
			Help:    "Time spent mapping and validating one record",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sip_records_in_flight",
			Help: "Records currently being processed",
		}),
	}
}

// Begin marks a record as in flight and returns the func that completes it.
func (m *Metrics) Begin() func(outcome string) {
	if m == nil {
		return func(string) {}
	}

	start := time.Now()

	m.inFlight.Inc()

	return func(outcome string) {
		m.inFlight.Dec()
		m.records.WithLabelValues(outcome).Inc()
		m.duration.Observe(time.Since(start).Seconds())
	}
}

// Records returns the counter of one outcome.
func (m *Metrics) Records(outcome string) prometheus.Counter {
	return m.records.WithLabelValues(outcome)
}
