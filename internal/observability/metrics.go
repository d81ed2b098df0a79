package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "compliance_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Load metrics.
	Loads               *prometheus.CounterVec // labels: origin={remote,fallback}
	LoadDuration        prometheus.Histogram
	LoadsInFlight       prometheus.Gauge
	StaleLoadsDiscarded prometheus.Counter

	// Normalization metrics.
	RecordsLoaded         prometheus.Gauge
	RecordsSkipped        prometheus.Counter
	NormalizationWarnings prometheus.Counter
	SynthesizedFields     *prometheus.CounterVec // labels: field={coordinates,location}

	// Snapshot metrics, updated on every commit.
	Degraded           prometheus.Gauge
	GlobalCompliance   prometheus.Gauge
	TierProjects       *prometheus.GaugeVec   // labels: tier={compliant,attention,critical}
	SnapshotsPublished *prometheus.CounterVec // labels: outcome={success,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Completed project loads by origin of the resulting record set.",
		}, []string{"origin"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete fetch-normalize cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LoadsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loads_in_flight",
			Help:      "Loads currently waiting on the project source.",
		}),
		StaleLoadsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_loads_discarded_total",
			Help:      "Load results dropped because a newer load had already been committed.",
		}),
		RecordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_loaded",
			Help:      "Project records in the current snapshot.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Upstream records rejected during normalization.",
		}),
		NormalizationWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalization_warnings_total",
			Help:      "Corrections applied to upstream records (clamped scores, dropped coordinates, ...).",
		}),
		SynthesizedFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesized_fields_total",
			Help:      "Placeholder geographic fields assigned to records.",
		}, []string{"field"}),
		Degraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "degraded",
			Help:      "1 when the current snapshot is the fallback dataset, 0 otherwise.",
		}),
		GlobalCompliance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "global_compliance",
			Help:      "Rounded mean compliance score of the current snapshot.",
		}),
		TierProjects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tier_projects",
			Help:      "Projects per compliance tier in the current snapshot.",
		}, []string{"tier"}),
		SnapshotsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Snapshots handed to sinks by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Loads,
		m.LoadDuration,
		m.LoadsInFlight,
		m.StaleLoadsDiscarded,
		m.RecordsLoaded,
		m.RecordsSkipped,
		m.NormalizationWarnings,
		m.SynthesizedFields,
		m.Degraded,
		m.GlobalCompliance,
		m.TierProjects,
		m.SnapshotsPublished,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
