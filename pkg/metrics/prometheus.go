// Package metrics provides Prometheus metrics for the free-throw analysis service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Analysis
	trialsLoaded     *prometheus.CounterVec
	framesAnalyzed   prometheus.Counter
	missingSamples   *prometheus.CounterVec
	analysisRuns     *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	trialsByOutcome  *prometheus.GaugeVec

	// Storage and publishing
	storeSaves      prometheus.Counter
	storeLatency    prometheus.Histogram
	publishMessages *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// DefaultBuckets covers 0.5ms to about 4s; every latency metric is recorded in milliseconds.
var DefaultBuckets = prometheus.ExponentialBuckets(0.5, 2, 14) //nolint:gochecknoglobals // shared bucket layout

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "freethrow",
		subsystem:        "analysis",
		histogramBuckets: DefaultBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.trialsLoaded = auto.NewCounterVec(
		m.counterOpts("trials_loaded_total", "Trial documents loaded, by outcome"),
		[]string{"outcome"},
	)
	m.framesAnalyzed = auto.NewCounter(
		m.counterOpts("frames_analyzed_total", "Motion-capture frames analyzed"),
	)
	m.missingSamples = auto.NewCounterVec(
		m.counterOpts("missing_samples_total", "Per-frame deviation samples that were missing, by joint"),
		[]string{"joint"},
	)
	m.analysisRuns = auto.NewCounterVec(
		m.counterOpts("runs_total", "Analysis runs, by status"),
		[]string{"status"},
	)
	m.analysisDuration = auto.NewHistogram(
		m.histogramOpts("run_duration_milliseconds", "Duration of a full analysis run in milliseconds"),
	)
	m.trialsByOutcome = auto.NewGaugeVec(
		m.gaugeOpts("trials", "Trials in the latest analysis run, by outcome"),
		[]string{"outcome"},
	)

	m.storeSaves = auto.NewCounter(
		m.counterOpts("store_saves_total", "Analysis runs persisted to the store"),
	)
	m.storeLatency = auto.NewHistogram(
		m.histogramOpts("store_save_latency_milliseconds", "Store save latency in milliseconds"),
	)
	m.publishMessages = auto.NewCounterVec(
		m.counterOpts("publish_messages_total", "Summary messages published, by status"),
		[]string{"status"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutines", "Number of goroutines"),
	)
}

// Analysis Metrics Functions.

// RecordTrialLoaded counts one loaded trial document.
func RecordTrialLoaded(outcome string) {
	globalManager.trialsLoaded.WithLabelValues(outcome).Inc()
}

// RecordFramesAnalyzed adds n analyzed frames.
func RecordFramesAnalyzed(n int) {
	globalManager.framesAnalyzed.Add(float64(n))
}

// RecordMissingSamples adds n missing deviation samples for joint.
func RecordMissingSamples(joint string, n int) {
	globalManager.missingSamples.WithLabelValues(joint).Add(float64(n))
}

// RecordAnalysisRun counts an analysis run by status and observes its duration,
// failed runs included.
func RecordAnalysisRun(status string, durationMs float64) {
	globalManager.analysisRuns.WithLabelValues(status).Inc()
	globalManager.analysisDuration.Observe(durationMs)
}

// UpdateTrialsByOutcome sets the trial count of the latest run for outcome.
func UpdateTrialsByOutcome(outcome string, count int) {
	globalManager.trialsByOutcome.WithLabelValues(outcome).Set(float64(count))
}

// Storage Metrics Functions.

// RecordStoreSave counts a persisted run and its latency.
func RecordStoreSave(latencyMs float64) {
	globalManager.storeSaves.Inc()
	globalManager.storeLatency.Observe(latencyMs)
}

// RecordPublish counts a published message by status ("ok", "error" or "timeout").
func RecordPublish(status string) {
	globalManager.publishMessages.WithLabelValues(status).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
