// Package metrics provides Prometheus metrics for the compass scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager owns all Prometheus collectors for the engine.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	// Run lifecycle
	runsTotal   prometheus.Counter
	runDuration prometheus.Histogram
	runErrors   prometheus.Counter

	// Aggregation stage
	entitiesAggregated prometheus.Counter
	entitiesExcluded   prometheus.Counter
	nullIndicators     prometheus.Counter

	// Normalization stage
	degenerateIndicators prometheus.Counter

	// Scoring stage
	schemeScores   prometheus.Counter
	nullComposites prometheus.Counter

	// Ingestion
	observationsLoaded  prometheus.Counter
	observationsSkipped prometheus.Counter
	duplicateRows       prometheus.Counter

	// HTTP delivery
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager and registers all collectors
// on a private registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "compass",
		subsystem: "engine",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.runsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "runs_total", Help: "Number of report runs started.",
	})
	m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "run_duration_seconds", Help: "Wall-clock duration of a report run.",
		Buckets: m.buckets,
	})
	m.runErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "run_errors_total", Help: "Number of report runs aborted with an error.",
	})
	m.entitiesAggregated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "entities_aggregated_total", Help: "Entities reduced to indicator sets.",
	})
	m.entitiesExcluded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "entities_excluded_total", Help: "Entities dropped for insufficient observations.",
	})
	m.nullIndicators = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "null_indicators_total", Help: "Indicator values that resolved to null.",
	})
	m.degenerateIndicators = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "degenerate_indicators_total", Help: "Indicators nulled during normalization for zero population variance.",
	})
	m.schemeScores = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "scheme_scores_total", Help: "Composite scores produced across all schemes.",
	})
	m.nullComposites = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "null_composites_total", Help: "Composite scores that resolved to null.",
	})
	m.observationsLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "source",
		Name: "observations_loaded_total", Help: "Observations accepted into the store.",
	})
	m.observationsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "source",
		Name: "observations_skipped_total", Help: "Malformed source rows skipped.",
	})
	m.duplicateRows = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "source",
		Name: "duplicate_rows_total", Help: "Duplicate (entity, period) rows dropped first-wins.",
	})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "requests_total", Help: "HTTP requests by endpoint and status.",
	}, []string{"endpoint", "status"})
	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "request_duration_seconds", Help: "HTTP request latency by endpoint.",
		Buckets: m.buckets,
	}, []string{"endpoint"})

	m.registry.MustRegister(
		m.runsTotal, m.runDuration, m.runErrors,
		m.entitiesAggregated, m.entitiesExcluded, m.nullIndicators,
		m.degenerateIndicators,
		m.schemeScores, m.nullComposites,
		m.observationsLoaded, m.observationsSkipped, m.duplicateRows,
		m.httpRequests, m.httpRequestDuration,
	)
	return m
}

var defaultManager = NewManager()

// GetRegistry returns the registry backing the default manager.
func GetRegistry() *prometheus.Registry { return defaultManager.registry }

// Package-level helpers recording on the default manager.

func RecordRunStarted()                 { defaultManager.runsTotal.Inc() }
func RecordRunDuration(seconds float64) { defaultManager.runDuration.Observe(seconds) }
func RecordRunError()                   { defaultManager.runErrors.Inc() }

func RecordEntityAggregated() { defaultManager.entitiesAggregated.Inc() }
func RecordEntityExcluded()   { defaultManager.entitiesExcluded.Inc() }
func RecordNullIndicator()    { defaultManager.nullIndicators.Inc() }

func RecordDegenerateIndicator() { defaultManager.degenerateIndicators.Inc() }

func RecordSchemeScore()   { defaultManager.schemeScores.Inc() }
func RecordNullComposite() { defaultManager.nullComposites.Inc() }

func RecordObservationLoaded()  { defaultManager.observationsLoaded.Inc() }
func RecordObservationSkipped() { defaultManager.observationsSkipped.Inc() }
func RecordDuplicateRow()       { defaultManager.duplicateRows.Inc() }

func RecordHTTPRequest(endpoint, status string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, status).Inc()
}

func RecordHTTPRequestDuration(endpoint string, seconds float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}
