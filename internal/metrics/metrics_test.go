package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBegin(t *testing.T) {
	m := New(prometheus.NewRegistry())

	done := m.Begin()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))

	done(OutcomeOK)
	m.Begin()(OutcomeDiscarded)
	m.Begin()(OutcomeOK)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.records.WithLabelValues(OutcomeDiscarded)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Begin()(OutcomeFailed) })
}
