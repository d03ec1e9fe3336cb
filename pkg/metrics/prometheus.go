// Package metrics provides Prometheus metrics for the fbstats service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by callers.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
	ResultOK    = "ok"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// defaultLatencyBuckets spans 5ms to ~40s, wide enough for full page loads.
var defaultLatencyBuckets = prometheus.ExponentialBuckets(5, 2, 14) //nolint:gochecknoglobals // immutable bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Cache
	cacheLookups *prometheus.CounterVec
	cacheWrites  *prometheus.CounterVec

	// Pipeline
	pipelineRuns          *prometheus.CounterVec
	pipelineDuration      prometheus.Histogram
	pipelineStageFailures *prometheus.CounterVec
	fetchDuration         *prometheus.HistogramVec
	recordsEmitted        prometheus.Gauge

	// Events proxy
	eventCompetitions prometheus.Gauge
	eventLeagueErrors prometheus.Counter

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fbstats",
		subsystem:        "",
		histogramBuckets: defaultLatencyBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.cacheLookups = m.counterVec("cache_lookups_total",
		"Cache reads by result (hit, miss, error)", "result")
	m.cacheWrites = m.counterVec("cache_writes_total",
		"Cache writes by result (ok, error)", "result")

	m.pipelineRuns = m.counterVec("pipeline_runs_total",
		"Full scrape pipeline runs by outcome", "outcome")
	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pipeline_duration_milliseconds",
		Help:        "Wall time of a full scrape pipeline run in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
	m.pipelineStageFailures = m.counterVec("pipeline_stage_failures_total",
		"Pipeline failures by failing stage", "stage")
	m.fetchDuration = m.histogramVec("fetch_duration_milliseconds",
		"Time to load one category container in milliseconds", "category")
	m.recordsEmitted = m.gauge("records_emitted",
		"Number of player records produced by the last successful run")

	m.eventCompetitions = m.gauge("event_competitions",
		"Number of competitions returned by the last events request")
	m.eventLeagueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "event_league_errors_total",
		Help:        "Per-league upstream failures skipped by the events proxy",
		ConstLabels: m.constLabels,
	})

	m.errorsByComponent = m.counterVec("errors_total",
		"Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Current heap allocation in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Current number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     prometheus.ExponentialBuckets(0.01, 2, 12),
		ConstLabels: m.constLabels,
	})
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordCacheLookup counts a cache read with its result.
func RecordCacheLookup(result string) {
	globalManager.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWrite counts a cache write with its result.
func RecordCacheWrite(result string) {
	globalManager.cacheWrites.WithLabelValues(result).Inc()
}

// RecordPipelineRun counts a pipeline run and observes its duration.
func RecordPipelineRun(outcome string, durationMs float64) {
	globalManager.pipelineRuns.WithLabelValues(outcome).Inc()
	globalManager.pipelineDuration.Observe(durationMs)
}

// RecordStageFailure counts a pipeline failure at stage.
func RecordStageFailure(stage string) {
	globalManager.pipelineStageFailures.WithLabelValues(stage).Inc()
}

// RecordFetchDuration observes the load time of one category page.
func RecordFetchDuration(category string, durationMs float64) {
	globalManager.fetchDuration.WithLabelValues(category).Observe(durationMs)
}

// UpdateRecordsEmitted sets the record count of the last successful run.
func UpdateRecordsEmitted(count int) {
	globalManager.recordsEmitted.Set(float64(count))
}

// UpdateEventCompetitions sets the competition count of the last events request.
func UpdateEventCompetitions(count int) {
	globalManager.eventCompetitions.Set(float64(count))
}

// RecordEventLeagueError counts a skipped league in the events proxy.
func RecordEventLeagueError() {
	globalManager.eventLeagueErrors.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
