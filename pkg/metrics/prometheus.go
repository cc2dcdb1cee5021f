// Package metrics provides Prometheus metrics for the kinetic frame pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Frame pipeline
	framesProcessed      *prometheus.CounterVec
	framesDropped        *prometheus.CounterVec
	frameStageLatency    *prometheus.HistogramVec
	registrationCoverage prometheus.Gauge
	depthValidRatio      prometheus.Gauge

	// Gesture capture and recognition
	gestureBufferSize prometheus.Gauge
	matchAttempts     prometheus.Counter
	matchesByLabel    *prometheus.CounterVec
	matchDistance     prometheus.Histogram
	referenceCount    prometheus.Gauge
	sessionState      *prometheus.GaugeVec

	// Skeleton file codec
	codecOperations *prometheus.CounterVec

	// Persistence queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Persistence workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter
	jobsByKind              *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kinetic",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// Enabled reports whether the package level recorders write to this manager.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	m.framesProcessed = m.counterVec("frames_processed_total", "Frames processed by stream (depth, color, skeleton)", "stream")
	m.framesDropped = m.counterVec("frames_dropped_total", "Frames dropped by stream and reason", "stream", "reason")
	m.frameStageLatency = m.histogramVec("frame_stage_latency_milliseconds", "Per-frame processing latency by stage", m.histogramBuckets, "stage")
	m.registrationCoverage = m.gauge("registration_coverage_ratio", "Fraction of depth cells mapped into the color frame on the last registration")
	m.depthValidRatio = m.gauge("depth_valid_ratio", "Fraction of depth samples inside the reliable range on the last frame")

	m.gestureBufferSize = m.gauge("gesture_buffer_size", "Current number of skeleton frames in the gesture buffer")
	m.matchAttempts = m.counter("match_attempts_total", "Gesture match attempts that compared against references")
	m.matchesByLabel = m.counterVec("matches_total", "Gesture match results by label", "label")
	m.matchDistance = m.histogram("match_distance", "Minimum gesture distance per match attempt",
		[]float64{1, 2, 5, 10, 20, 40, 80, 160, 320, 640})
	m.referenceCount = m.gauge("reference_gestures", "Number of loaded reference gesture examples")
	m.sessionState = m.gaugeVec("session_state", "Current session state (1 for the active state)", "state")

	m.codecOperations = m.counterVec("codec_operations_total", "Skeleton file codec operations by op and status", "op", "status")

	m.queueSize = m.gauge("queue_size", "Current size of the persistence queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the persistence queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Persistence queue utilization (0-1)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue failures (full, closed, cancelled)")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds", m.histogramBuckets)

	m.workerActiveCount = m.gauge("worker_active_count", "Number of persistence workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Persistence job latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Persistence job failures")
	m.jobsByKind = m.counterVec("jobs_total", "Persistence jobs by kind and status", "kind", "status")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

// Frame pipeline.

// RecordFrameProcessed increments the processed counter for a stream.
func RecordFrameProcessed(stream string) {
	globalManager.framesProcessed.WithLabelValues(stream).Inc()
}

// RecordFrameDropped increments the dropped counter for a stream.
func RecordFrameDropped(stream, reason string) {
	globalManager.framesDropped.WithLabelValues(stream, reason).Inc()
}

// RecordStageLatency records how long a pipeline stage took for one frame.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.frameStageLatency.WithLabelValues(stage).Observe(latencyMs)
}

// UpdateRegistrationCoverage sets the mapped-cell ratio of the last registration.
func UpdateRegistrationCoverage(ratio float64) {
	globalManager.registrationCoverage.Set(ratio)
}

// UpdateDepthValidRatio sets the in-range sample ratio of the last depth frame.
func UpdateDepthValidRatio(ratio float64) {
	globalManager.depthValidRatio.Set(ratio)
}

// Gesture metrics.

// UpdateGestureBufferSize sets the gesture buffer length.
func UpdateGestureBufferSize(size int) {
	globalManager.gestureBufferSize.Set(float64(size))
}

// RecordMatchAttempt records one comparison round and its minimum distance.
func RecordMatchAttempt(distance float64) {
	globalManager.matchAttempts.Inc()
	globalManager.matchDistance.Observe(distance)
}

// RecordMatch increments the result counter for label.
func RecordMatch(label string) {
	globalManager.matchesByLabel.WithLabelValues(label).Inc()
}

// UpdateReferenceCount sets the number of loaded reference examples.
func UpdateReferenceCount(count int) {
	globalManager.referenceCount.Set(float64(count))
}

// UpdateSessionState marks state as the active session state.
func UpdateSessionState(active string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == active {
			v = 1
		}
		globalManager.sessionState.WithLabelValues(s).Set(v)
	}
}

// RecordCodecOperation counts a codec read or write with its outcome.
func RecordCodecOperation(op, status string) {
	globalManager.codecOperations.WithLabelValues(op, status).Inc()
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

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordJob counts a finished persistence job.
func RecordJob(kind, status string) {
	globalManager.jobsByKind.WithLabelValues(kind, status).Inc()
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

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

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
