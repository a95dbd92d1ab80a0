// Package metrics provides Prometheus metrics for the stagewise analytics
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus instruments for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Snapshot and report pipeline
	snapshotLoadDuration prometheus.Histogram
	reportBuilds         *prometheus.CounterVec

	// Instrumentation buffer
	samplesRecorded   prometheus.Counter
	samplesDropped    prometheus.Counter
	bufferSize        prometheus.Gauge
	sampleQueueSize   prometheus.Gauge
	sampleQueueCap    prometheus.Gauge
	ingestWorkerCount prometheus.Gauge

	// Alerting
	alertsFired *prometheus.CounterVec
}

// Global manager on a custom registry so the default Go collectors stay out
// of the exposition.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with configuration options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stagewise",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.snapshotLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_load_duration_milliseconds",
		Help:      "Time spent loading pipeline snapshots from the repository",
		Buckets:   m.histogramBuckets,
	})

	m.reportBuilds = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "report_builds_total",
			Help:      "Total number of report and dashboard builds by kind",
		},
		[]string{"report"},
	)

	m.samplesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_recorded_total",
		Help:      "Total number of metric samples accepted into the buffer",
	})

	m.samplesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_dropped_total",
		Help:      "Total number of metric samples rejected on ingest backpressure",
	})

	m.bufferSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sample_buffer_size",
		Help:      "Current number of samples held in the bounded buffer",
	})

	m.sampleQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sample_queue_size",
		Help:      "Current size of the sample ingest queue (backlog indicator)",
	})

	m.sampleQueueCap = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sample_queue_capacity",
		Help:      "Configured capacity of the sample ingest queue",
	})

	m.ingestWorkerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_worker_count",
		Help:      "Number of workers draining the sample ingest queue",
	})

	m.alertsFired = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "performance_alerts_total",
			Help:      "Total number of performance alerts returned, by severity",
		},
		[]string{"severity"},
	)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordSnapshotLoad records a repository snapshot load duration in
// milliseconds.
func RecordSnapshotLoad(durationMs float64) {
	globalManager.snapshotLoadDuration.Observe(durationMs)
}

// RecordReportBuild counts one build of the named report or dashboard.
func RecordReportBuild(report string) {
	globalManager.reportBuilds.WithLabelValues(report).Inc()
}

// RecordSampleRecorded counts one accepted metric sample.
func RecordSampleRecorded() {
	globalManager.samplesRecorded.Inc()
}

// RecordSampleDropped counts one sample rejected on backpressure.
func RecordSampleDropped() {
	globalManager.samplesDropped.Inc()
}

// UpdateBufferSize sets the bounded-buffer occupancy gauge.
func UpdateBufferSize(size int) {
	globalManager.bufferSize.Set(float64(size))
}

// UpdateSampleQueueSize sets the ingest queue occupancy gauge.
func UpdateSampleQueueSize(size int) {
	globalManager.sampleQueueSize.Set(float64(size))
}

// UpdateSampleQueueCapacity sets the ingest queue capacity gauge.
func UpdateSampleQueueCapacity(capacity int) {
	globalManager.sampleQueueCap.Set(float64(capacity))
}

// UpdateIngestWorkerCount sets the ingest worker gauge.
func UpdateIngestWorkerCount(count int) {
	globalManager.ingestWorkerCount.Set(float64(count))
}

// RecordAlertFired counts one returned performance alert by severity.
func RecordAlertFired(severity string) {
	globalManager.alertsFired.WithLabelValues(severity).Inc()
}

// GetRegistry returns the custom registry for exposition handlers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
