package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RegisterOnFreshRegistry(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	for _, c := range m.collectors() {
		require.NoError(t, reg.Register(c))
	}

	m.Loads.WithLabelValues("fallback").Inc()
	m.TierProjects.WithLabelValues("critical").Set(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("fallback")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TierProjects.WithLabelValues("critical")))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.StaleLoadsDiscarded.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.StaleLoadsDiscarded))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.StaleLoadsDiscarded))
}
