// Package metrics provides Prometheus metrics for the edupredict service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Prediction metrics
	predictions       *prometheus.CounterVec
	predictionErrors  *prometheus.CounterVec
	inferenceLatency  prometheus.Histogram
	predictedScore    prometheus.Histogram
	simulations       prometheus.Counter
	simulationDelta   prometheus.Histogram
	artifactLoads     *prometheus.CounterVec
	artifactLoadMs    prometheus.Histogram
	artifactLoadedTS  prometheus.Gauge
	knownCategories   *prometheus.GaugeVec

	// History metrics
	historyWrites       prometheus.Counter
	historyDuplicates   prometheus.Counter
	historyWriteErrors  prometheus.Counter
	historyWriteLatency prometheus.Histogram
	historyQueryLatency prometheus.Histogram

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
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
		namespace:        "edupredict",
		subsystem:        "service",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	// Prediction metrics
	m.predictions = auto.NewCounterVec(
		m.counter("predictions_total", "Total number of predictions by risk label"),
		[]string{"risk"},
	)
	m.predictionErrors = auto.NewCounterVec(
		m.counter("prediction_errors_total", "Total number of failed predictions by kind"),
		[]string{"kind"},
	)
	m.inferenceLatency = auto.NewHistogram(
		m.histogram("inference_latency_milliseconds", "Encode, scale and inference latency in milliseconds", m.histogramBuckets),
	)
	m.predictedScore = auto.NewHistogram(
		m.histogram("predicted_score", "Distribution of predicted performance scores", prometheus.LinearBuckets(0, 10, 12)),
	)
	m.simulations = auto.NewCounter(
		m.counter("simulations_total", "Total number of what-if scenarios evaluated"),
	)
	m.simulationDelta = auto.NewHistogram(
		m.histogram("simulation_score_delta", "Score change produced by what-if scenarios", prometheus.LinearBuckets(-20, 5, 9)),
	)
	m.artifactLoads = auto.NewCounterVec(
		m.counter("artifact_loads_total", "Total number of model artifact loads by status"),
		[]string{"status"},
	)
	m.artifactLoadMs = auto.NewHistogram(
		m.histogram("artifact_load_duration_milliseconds", "Model artifact load duration in milliseconds", m.histogramBuckets),
	)
	m.artifactLoadedTS = auto.NewGauge(
		m.gauge("artifact_loaded_unix", "Unix timestamp of the last successful artifact load"),
	)
	m.knownCategories = auto.NewGaugeVec(
		m.gauge("known_categories", "Number of labels per category encoding"),
		[]string{"encoding"},
	)

	// History metrics
	m.historyWrites = auto.NewCounter(
		m.counter("history_writes_total", "Total number of history records persisted"),
	)
	m.historyDuplicates = auto.NewCounter(
		m.counter("history_duplicates_total", "Total number of duplicate history saves acknowledged without a write"),
	)
	m.historyWriteErrors = auto.NewCounter(
		m.counter("history_write_errors_total", "Total number of failed history writes"),
	)
	m.historyWriteLatency = auto.NewHistogram(
		m.histogram("history_write_latency_milliseconds", "History write latency in milliseconds", m.histogramBuckets),
	)
	m.historyQueryLatency = auto.NewHistogram(
		m.histogram("history_query_latency_milliseconds", "History query latency in milliseconds", m.histogramBuckets),
	)

	// Queue metrics
	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Current size of the history queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueue = auto.NewCounter(m.counter("queue_enqueue_total", "Total number of messages enqueued"))
	m.queueDequeue = auto.NewCounter(m.counter("queue_dequeue_total", "Total number of messages dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Total number of enqueue errors"))

	// Worker metrics
	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Configured number of history writers"))
	m.workerActiveCount = auto.NewGauge(m.gauge("worker_active_count", "Number of running history writers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", m.histogramBuckets),
	)
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Total number of worker errors"))

	// HTTP metrics
	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counter("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
}

// RecordPrediction counts a successful prediction and observes its score.
func RecordPrediction(risk string, score float64) {
	globalManager.predictions.WithLabelValues(risk).Inc()
	globalManager.predictedScore.Observe(score)
}

// RecordPredictionError counts a failed prediction by kind.
func RecordPredictionError(kind string) {
	globalManager.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordInferenceLatency records inference latency in milliseconds.
func RecordInferenceLatency(latencyMs float64) {
	globalManager.inferenceLatency.Observe(latencyMs)
}

// RecordSimulation counts a scenario and observes its score delta.
func RecordSimulation(deltaScore float64) {
	globalManager.simulations.Inc()
	globalManager.simulationDelta.Observe(deltaScore)
}

// RecordArtifactLoad records one artifact load attempt.
func RecordArtifactLoad(status string, durationMs float64) {
	globalManager.artifactLoads.WithLabelValues(status).Inc()
	globalManager.artifactLoadMs.Observe(durationMs)
}

// UpdateArtifactLoadedAt sets the last successful artifact load time.
func UpdateArtifactLoadedAt(unix int64) {
	globalManager.artifactLoadedTS.Set(float64(unix))
}

// UpdateKnownCategories sets the label count of an encoding.
func UpdateKnownCategories(encoding string, count int) {
	globalManager.knownCategories.WithLabelValues(encoding).Set(float64(count))
}

// RecordHistoryWrite counts a persisted history record.
func RecordHistoryWrite(latencyMs float64) {
	globalManager.historyWrites.Inc()
	globalManager.historyWriteLatency.Observe(latencyMs)
}

// RecordHistoryDuplicate counts a duplicate save.
func RecordHistoryDuplicate() {
	globalManager.historyDuplicates.Inc()
}

// RecordHistoryWriteError counts a failed history write.
func RecordHistoryWriteError() {
	globalManager.historyWriteErrors.Inc()
}

// RecordHistoryQueryLatency records history query latency.
func RecordHistoryQueryLatency(latencyMs float64) {
	globalManager.historyQueryLatency.Observe(latencyMs)
}

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
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
