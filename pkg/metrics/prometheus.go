// Package metrics provides Prometheus metrics for the challenge kiosk.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the kiosk.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline
	submissions     *prometheus.CounterVec
	comparisons     *prometheus.CounterVec
	entries         prometheus.Gauge
	sessionResets   prometheus.Counter
	pipelineLatency prometheus.Histogram
	appendLatency   prometheus.Histogram

	// Submission queue and idempotency
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueRejections *prometheus.CounterVec
	dedupeSize      prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Presentation
	chartRenders    *prometheus.CounterVec
	liveSubscribers prometheus.Gauge
	liveDropped     prometheus.Counter

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kiosk",
		subsystem:        "challenge",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.submissions = m.counterVec("submissions_total",
		"Submissions received, by outcome (accepted, missing_field, invalid_number, duplicate, backpressure, capacity_exceeded, timeout, cancelled, unavailable, error)",
		"outcome")
	m.comparisons = m.counterVec("comparisons_total",
		"Accepted entries by comparison class against the prior average", "class")
	m.entries = m.gauge("entries", "Entries in the current session store")
	m.sessionResets = m.counter("session_resets_total", "Sessions discarded and replaced by a fresh store")
	m.pipelineLatency = m.histogram("pipeline_latency_milliseconds",
		"Time spent validating, appending and recomputing the views for one submission", m.histogramBuckets)
	m.appendLatency = m.histogram("store_append_latency_milliseconds",
		"Time spent appending one entry to the store", m.histogramBuckets)

	m.queueSize = m.gauge("queue_size", "Submissions waiting for the pipeline worker")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of pending submissions")
	m.queueRejections = m.counterVec("queue_rejections_total", "Submissions refused by the queue, by reason", "reason")
	m.dedupeSize = m.gauge("dedupe_size", "Submission ids currently remembered for idempotency")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = m.counterVec("http_errors_total", "HTTP error responses by endpoint, method and error type",
		"endpoint", "method", "error_type")

	m.chartRenders = m.counterVec("chart_renders_total", "PNG chart renders by result", "result")
	m.liveSubscribers = m.gauge("live_subscribers", "Connected live feed clients")
	m.liveDropped = m.counter("live_dropped_total", "Live feed messages dropped for slow clients")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100})
}

// RecordSubmission counts a submission by its outcome label.
func RecordSubmission(outcome string) {
	globalManager.submissions.WithLabelValues(outcome).Inc()
}

// RecordComparison counts an accepted entry by comparison class.
func RecordComparison(class string) {
	globalManager.comparisons.WithLabelValues(class).Inc()
}

// UpdateEntries sets the number of entries in the current store.
func UpdateEntries(count int) {
	globalManager.entries.Set(float64(count))
}

// RecordSessionReset counts a session reset.
func RecordSessionReset() {
	globalManager.sessionResets.Inc()
}

// RecordPipelineLatency records one full submission pass in milliseconds.
func RecordPipelineLatency(latencyMs float64) {
	globalManager.pipelineLatency.Observe(latencyMs)
}

// RecordStoreAppendLatency records one store append in milliseconds.
func RecordStoreAppendLatency(latencyMs float64) {
	globalManager.appendLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the pending submission count.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejection counts a refused enqueue.
func RecordQueueRejection(reason string) {
	globalManager.queueRejections.WithLabelValues(reason).Inc()
}

// UpdateDedupeSize sets the number of remembered submission ids.
func UpdateDedupeSize(size int64) {
	globalManager.dedupeSize.Set(float64(size))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordChartRender counts a chart render attempt.
func RecordChartRender(result string) {
	globalManager.chartRenders.WithLabelValues(result).Inc()
}

// UpdateLiveSubscribers sets the number of live feed clients.
func UpdateLiveSubscribers(count int) {
	globalManager.liveSubscribers.Set(float64(count))
}

// RecordLiveDropped counts a message dropped for a slow live client.
func RecordLiveDropped() {
	globalManager.liveDropped.Inc()
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
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

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
