// Package metrics provides Prometheus metrics for the cohort matching service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the matching service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Run metrics
	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	runLockContended prometheus.Counter
	lastRunUnix      prometheus.Gauge

	// Pool metrics
	poolSize           prometheus.Gauge
	candidatesRejected prometheus.Counter
	excludedPairs      prometheus.Gauge
	pairsScored        prometheus.Counter

	// Group metrics
	groupsFormed    prometheus.Counter
	groupsDiscarded prometheus.Counter
	groupSize       prometheus.Histogram
	groupScore      prometheus.Histogram
	groupsPersisted prometheus.Counter
	groupsFailed    prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cohort",
		subsystem:        "matching",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Total number of matching runs by outcome",
		ConstLabels: m.customLabels,
	}, []string{"outcome"})
	m.runDuration = m.histogram("run_duration_milliseconds", "Wall time of a matching run in milliseconds",
		[]float64{1, 5, 10, 50, 100, 500, 1000, 5000, 30000})
	m.runLockContended = m.counter("run_lock_contended_total", "Run requests rejected because another run held the lock")
	m.lastRunUnix = m.gauge("last_run_timestamp_seconds", "Unix time of the last completed matching run")

	m.poolSize = m.gauge("pool_size", "Eligible candidates in the last run")
	m.candidatesRejected = m.counter("candidates_rejected_total", "Candidates rejected at the repository boundary")
	m.excludedPairs = m.gauge("excluded_pairs", "Pairs excluded by the cooldown window in the last run")
	m.pairsScored = m.counter("pairs_scored_total", "Candidate pairs scored")

	m.groupsFormed = m.counter("groups_formed_total", "Groups accepted by the builder")
	m.groupsDiscarded = m.counter("groups_discarded_total", "Seeded groups discarded for quality or constraints")
	m.groupSize = m.histogram("group_size", "Size of accepted groups", []float64{2, 3, 4})
	m.groupScore = m.histogram("group_score", "Average pairwise score of accepted groups",
		[]float64{0.5, 0.55, 0.6, 0.65, 0.7, 0.8, 0.9, 1})
	m.groupsPersisted = m.counter("groups_persisted_total", "Groups written by the persistence gateway")
	m.groupsFailed = m.counter("groups_failed_total", "Groups whose persistence was rolled back")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_errors_total",
		Help:        "HTTP responses with an error status by endpoint, method, type and severity",
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "error_type", "severity"})
}

// RecordRun counts a finished run and its wall time.
func RecordRun(outcome string, took time.Duration) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
	globalManager.runDuration.Observe(float64(took.Milliseconds()))
	globalManager.lastRunUnix.Set(float64(time.Now().Unix()))
}

// RecordRunLockContended counts a run rejected by the run lock.
func RecordRunLockContended() {
	globalManager.runLockContended.Inc()
}

// UpdatePoolSize sets the eligible pool size of the current run.
func UpdatePoolSize(n int) {
	globalManager.poolSize.Set(float64(n))
}

// RecordCandidatesRejected adds candidates dropped by boundary validation.
func RecordCandidatesRejected(n int) {
	globalManager.candidatesRejected.Add(float64(n))
}

// UpdateExcludedPairs sets the size of the current exclusion set.
func UpdateExcludedPairs(n int) {
	globalManager.excludedPairs.Set(float64(n))
}

// RecordPairsScored adds scored pairs.
func RecordPairsScored(n int) {
	globalManager.pairsScored.Add(float64(n))
}

// RecordGroupFormed records an accepted group.
func RecordGroupFormed(size int, score float64) {
	globalManager.groupsFormed.Inc()
	globalManager.groupSize.Observe(float64(size))
	globalManager.groupScore.Observe(score)
}

// RecordGroupsDiscarded adds discarded seeds.
func RecordGroupsDiscarded(n int) {
	globalManager.groupsDiscarded.Add(float64(n))
}

// RecordGroupPersisted counts a group stored by the gateway.
func RecordGroupPersisted() {
	globalManager.groupsPersisted.Inc()
}

// RecordGroupPersistFailed counts a group whose write was rolled back.
func RecordGroupPersistFailed() {
	globalManager.groupsFailed.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError counts an error response.
func RecordHTTPError(endpoint, method, errorType, severity string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType, severity).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
