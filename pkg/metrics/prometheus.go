// Package metrics provides Prometheus metrics for the coach matching engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Matching
	matchScores         prometheus.Counter
	matchScoringLatency prometheus.Histogram
	rankingsServed      *prometheus.CounterVec

	// Analytics
	analyses         *prometheus.CounterVec
	anomaliesFlagged prometheus.Counter
	forecasts        *prometheus.CounterVec

	// Recommendations
	recommendations       *prometheus.CounterVec
	recommendationLatency prometheus.Histogram

	// Batch jobs
	jobsSubmitted prometheus.Counter
	jobsDuplicate prometheus.Counter
	jobsFinished  *prometheus.CounterVec
	jobItemErrors prometheus.Counter
	jobsTracked   prometheus.Gauge

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerActiveCount       prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Storage
	storageLatency *prometheus.HistogramVec
	catalogRecords *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "coachmatch",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(auto promauto.Factory, name, help string) prometheus.Counter {
	return auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(auto promauto.Factory, name, help string, labels ...string) *prometheus.CounterVec {
	return auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(auto promauto.Factory, name, help string) prometheus.Gauge {
	return auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(auto promauto.Factory, name, help string, labels ...string) *prometheus.GaugeVec {
	return auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(auto promauto.Factory, name, help string) prometheus.Histogram {
	return auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(auto promauto.Factory, name, help string, labels ...string) *prometheus.HistogramVec {
	return auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.matchScores = m.counter(auto, "match_scores_total", "Total number of learner/counterpart pairs scored")
	m.matchScoringLatency = m.histogram(auto, "match_scoring_latency_milliseconds", "Latency of a ranking call in milliseconds")
	m.rankingsServed = m.counterVec(auto, "rankings_total", "Total number of rankings served by kind", "kind")

	m.analyses = m.counterVec(auto, "analyses_total", "Total number of history analyses by kind", "kind")
	m.anomaliesFlagged = m.counter(auto, "anomalies_flagged_total", "Total number of metric readings flagged as anomalies")
	m.forecasts = m.counterVec(auto, "forecasts_total", "Total number of forecasts by outcome", "outcome")

	m.recommendations = m.counterVec(auto, "recommendations_total", "Total number of recommendations by branch", "branch")
	m.recommendationLatency = m.histogram(auto, "recommendation_latency_milliseconds", "Recommendation synthesis latency in milliseconds")

	m.jobsSubmitted = m.counter(auto, "batch_jobs_submitted_total", "Total number of batch jobs accepted")
	m.jobsDuplicate = m.counter(auto, "batch_jobs_duplicate_total", "Total number of batch submissions rejected as duplicates")
	m.jobsFinished = m.counterVec(auto, "batch_jobs_finished_total", "Total number of batch jobs finished by status", "status")
	m.jobItemErrors = m.counter(auto, "batch_job_item_errors_total", "Total number of batch items that failed")
	m.jobsTracked = m.gauge(auto, "batch_jobs_tracked", "Number of batch jobs held in the job store")

	m.queueSize = m.gauge(auto, "queue_size", "Current size of the batch queue (backlog indicator)")
	m.queueCapacity = m.gauge(auto, "queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge(auto, "queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter(auto, "queue_enqueue_total", "Total number of tasks enqueued")
	m.queueDequeueRate = m.counter(auto, "queue_dequeue_total", "Total number of tasks dequeued")
	m.queueEnqueueErrors = m.counter(auto, "queue_enqueue_errors_total", "Total number of enqueue errors")
	m.queueProcessingLatency = m.histogram(auto, "queue_processing_latency_milliseconds", "Queue processing latency in milliseconds")

	m.workerActiveCount = m.gauge(auto, "worker_active_count", "Number of active workers")
	m.workerMessagesPerSecond = m.gauge(auto, "worker_messages_per_second", "Average tasks processed per second by workers")
	m.workerProcessingLatency = m.histogram(auto, "worker_processing_latency_milliseconds", "Worker processing latency in milliseconds")
	m.workerErrors = m.counter(auto, "worker_errors_total", "Total number of worker errors")

	m.storageLatency = m.histogramVec(auto, "storage_latency_milliseconds", "Catalog storage operation latency in milliseconds", "operation")
	m.catalogRecords = m.gaugeVec(auto, "catalog_records", "Number of catalog records by table", "table")

	m.httpRequests = m.counterVec(auto, "http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec(auto, "http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.systemMemoryUsage = m.gauge(auto, "system_memory_usage_bytes", "Heap bytes allocated by the process")
	m.systemGoroutineCount = m.gauge(auto, "system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram(auto, "system_gc_pause_milliseconds", "Average GC pause time in milliseconds")

	m.errorRateByComponent = m.counterVec(auto, "errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec(auto, "errors_by_type_total",
		"Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec(auto, "errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")
}

// Matching metrics.

// RecordRanking records a ranking of the given kind over n candidates.
func RecordRanking(kind string, candidates int, latencyMs float64) {
	globalManager.rankingsServed.WithLabelValues(kind).Inc()
	globalManager.matchScores.Add(float64(candidates))
	globalManager.matchScoringLatency.Observe(latencyMs)
}

// RecordMatchScore records a single pair score.
func RecordMatchScore() {
	globalManager.matchScores.Inc()
}

// Analytics metrics.

// RecordAnalysis increments the analyses counter for kind.
func RecordAnalysis(kind string) {
	globalManager.analyses.WithLabelValues(kind).Inc()
}

// RecordAnomaliesFlagged adds n flagged readings.
func RecordAnomaliesFlagged(n int) {
	globalManager.anomaliesFlagged.Add(float64(n))
}

// RecordForecast increments the forecast counter for outcome.
func RecordForecast(outcome string) {
	globalManager.forecasts.WithLabelValues(outcome).Inc()
}

// RecordRecommendation records a recommendation built on branch.
func RecordRecommendation(branch string, latencyMs float64) {
	globalManager.recommendations.WithLabelValues(branch).Inc()
	globalManager.recommendationLatency.Observe(latencyMs)
}

// Batch job metrics.

// RecordJobSubmitted increments the accepted jobs counter.
func RecordJobSubmitted() {
	globalManager.jobsSubmitted.Inc()
}

// RecordJobDuplicate increments the duplicate submissions counter.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// RecordJobFinished increments the finished jobs counter for status.
func RecordJobFinished(status string) {
	globalManager.jobsFinished.WithLabelValues(status).Inc()
}

// RecordJobItemError increments the failed items counter.
func RecordJobItemError() {
	globalManager.jobItemErrors.Inc()
}

// UpdateJobsTracked sets the number of jobs in the store.
func UpdateJobsTracked(n int) {
	globalManager.jobsTracked.Set(float64(n))
}

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker metrics.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the average tasks processed per second.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Storage metrics.

// RecordStorageLatency records the latency of a catalog operation.
func RecordStorageLatency(operation string, latencyMs float64) {
	globalManager.storageLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateCatalogRecords sets the record count of a catalog table.
func UpdateCatalogRecords(table string, count int) {
	globalManager.catalogRecords.WithLabelValues(table).Set(float64(count))
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System metrics.

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
