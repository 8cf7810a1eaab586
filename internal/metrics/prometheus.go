package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the device subsystem
type Metrics struct {
	// Host link metrics
	LinesProcessed  prometheus.Counter
	LinesDropped    prometheus.Counter
	MessagesByType  *prometheus.CounterVec
	UnknownMessages prometheus.Counter
	ResponsesSent   prometheus.Counter

	// Audio staging metrics
	StagingRejectedWrites prometheus.Counter
	StagedBytes           prometheus.Gauge
	DrainsCompleted       prometheus.Counter
	DrainStallRestarts    prometheus.Counter
	DrainDuration         prometheus.Histogram
	DrainBytes            prometheus.Histogram

	// Microphone injection metrics
	MicSamplesInjected prometheus.Counter
	MicQueueDepth      prometheus.Gauge

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the default registry
func NewMetrics() *Metrics {
	return &Metrics{
		LinesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uvd_lines_processed_total",
			Help: "Total number of complete command lines processed",
		}),
		LinesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uvd_lines_dropped_total",
			Help: "Total number of lines dropped to overflow or staleness",
		}),
		MessagesByType: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "uvd_messages_total",
			Help: "Total number of decoded messages by command type",
		}, []string{"type"}),
		UnknownMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uvd_unknown_messages_total",
			Help: "Total number of lines with an unrecognized command type",
		}),
		ResponsesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uvd_responses_sent_total",
			Help: "Total number of response lines written to the host",
		}),

		StagingRejectedWrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uvd_staging_rejected_writes_total",
			Help: "Total number of staging writes rejected (overflow or closed stream)",
		}),
		StagedBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "uvd_staging_bytes",
			Help: "Bytes currently held in the audio staging buffer",
		}),
		DrainsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uvd_drains_completed_total",
			Help: "Total number of completed staging buffer drains",
		}),
		DrainStallRestarts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uvd_drain_stall_restarts_total",
			Help: "Total number of sink restarts triggered by stalled drain writes",
		}),
		DrainDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "uvd_drain_duration_seconds",
			Help:    "Duration of staging buffer drains",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DrainBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "uvd_drain_bytes",
			Help:    "Size of drained audio streams in bytes",
			Buckets: []float64{512, 1024, 2048, 4096, 8192, 16384},
		}),

		MicSamplesInjected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uvd_mic_samples_injected_total",
			Help: "Total number of microphone samples pushed into the injection queue",
		}),
		MicQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "uvd_mic_queue_depth",
			Help: "Samples currently held in the microphone injection queue",
		}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "uvd_http_requests_total",
			Help: "Total number of HTTP API requests",
		}, []string{"endpoint", "method", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uvd_http_request_duration_seconds",
			Help:    "HTTP API request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "uvd_http_errors_total",
			Help: "Total number of HTTP API errors",
		}, []string{"endpoint", "error_type"}),
	}
}

// RecordLineProcessed increments the processed line counter
func (m *Metrics) RecordLineProcessed() {
	m.LinesProcessed.Inc()
}

// RecordLineDropped increments the dropped line counter
func (m *Metrics) RecordLineDropped() {
	m.LinesDropped.Inc()
}

// RecordMessage increments the per-type message counter
func (m *Metrics) RecordMessage(messageType string) {
	m.MessagesByType.WithLabelValues(messageType).Inc()
}

// RecordUnknownMessage increments the unknown message counter
func (m *Metrics) RecordUnknownMessage() {
	m.UnknownMessages.Inc()
}

// RecordResponseSent increments the response counter
func (m *Metrics) RecordResponseSent() {
	m.ResponsesSent.Inc()
}

// RecordRejectedWrite increments the rejected staging write counter
func (m *Metrics) RecordRejectedWrite() {
	m.StagingRejectedWrites.Inc()
}

// SetStagedBytes updates the staging buffer gauge
func (m *Metrics) SetStagedBytes(n int) {
	m.StagedBytes.Set(float64(n))
}

// RecordDrain records a completed drain with its size and duration
func (m *Metrics) RecordDrain(bytes int, duration time.Duration) {
	m.DrainsCompleted.Inc()
	m.DrainBytes.Observe(float64(bytes))
	m.DrainDuration.Observe(duration.Seconds())
}

// RecordDrainStalls adds newly observed sink restarts
func (m *Metrics) RecordDrainStalls(n uint64) {
	m.DrainStallRestarts.Add(float64(n))
}

// RecordMicInjected records a microphone push and the resulting depth
func (m *Metrics) RecordMicInjected(samples, depth int) {
	m.MicSamplesInjected.Add(float64(samples))
	m.MicQueueDepth.Set(float64(depth))
}

// RecordHTTPRequest records an HTTP API request
func (m *Metrics) RecordHTTPRequest(endpoint, method, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(endpoint, method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// RecordHTTPError records an HTTP API error
func (m *Metrics) RecordHTTPError(endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(endpoint, errorType).Inc()
}
