package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "speculative_weather"

// Metrics holds the Prometheus counters, histograms, and gauges for forecast
// assembly and snapshot publishing.
type Metrics struct {
	DatasetRecords prometheus.Gauge

	// Assembly metrics.
	ForecastsAssembled *prometheus.CounterVec // labels: granularity={current,hourly,daily,full}
	AssembleDuration   prometheus.Histogram
	FieldErrors        *prometheus.CounterVec // labels: field, reason
	SummaryCache       *prometheus.CounterVec // labels: result={hit,miss}

	// HTTP metrics.
	RateLimited prometheus.Counter

	// Publisher metrics.
	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter
	PublisherRunning   prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetRecords,
		m.ForecastsAssembled,
		m.AssembleDuration,
		m.FieldErrors,
		m.SummaryCache,
		m.RateLimited,
		m.SnapshotsPublished,
		m.PublishErrors,
		m.PublisherRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Observation records loaded from the historical CSV.",
		}),
		ForecastsAssembled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_assembled_total",
			Help:      "Forecast points and full forecasts assembled, by granularity.",
		}, []string{"granularity"}),
		AssembleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assemble_duration_seconds",
			Help:      "Duration of a full forecast assembly.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		FieldErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_errors_total",
			Help:      "Forecast fields reported unavailable, by field and reason.",
		}, []string{"field", "reason"}),
		SummaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_total",
			Help:      "Daily temperature summary cache lookups by result.",
		}, []string{"result"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Forecast requests rejected by the rate limiter.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Forecast snapshots written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed forecast snapshot writes.",
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publisher_running",
			Help:      "1 when the snapshot publisher is active, 0 when shut down.",
		}),
	}
}
