// Package observability provides Prometheus metrics for the orchestrator.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "orchestrator"
	chatSubsystem    = "chat"
)

// Metrics holds all Prometheus metrics for streaming chat operations.
type Metrics struct {
	// RequestsTotal counts chat stream requests.
	// Labels: status (committed, rolled_back, blocked)
	RequestsTotal *prometheus.CounterVec

	// TokensTotal counts answer fragments emitted to clients.
	TokensTotal prometheus.Counter

	// StreamDurationSeconds measures total stream duration.
	// Labels: status (committed, rolled_back)
	StreamDurationSeconds *prometheus.HistogramVec

	// ActiveStreams tracks currently active streaming connections.
	ActiveStreams prometheus.Gauge

	// ErrorsTotal counts errors by code.
	// Labels: error_code (CHAIN_STREAMING_ERROR, CHAT_SERVICE_ERROR)
	ErrorsTotal *prometheus.CounterVec

	// JobsTotal counts background jobs by name and outcome.
	// Labels: job (save_documents), status (ok, error, dropped)
	JobsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registerer.
// Pass prometheus.DefaultRegisterer in main; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "requests_total",
				Help:      "Total chat stream requests by final status",
			},
			[]string{"status"},
		),
		TokensTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "tokens_total",
				Help:      "Total answer fragments emitted to clients",
			},
		),
		StreamDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "stream_duration_seconds",
				Help:      "Total stream duration in seconds",
				Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"status"},
		),
		ActiveStreams: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "active_streams",
				Help:      "Number of currently active streaming connections",
			},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: chatSubsystem,
				Name:      "errors_total",
				Help:      "Total stream errors by error code",
			},
			[]string{"error_code"},
		),
		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "jobs",
				Name:      "total",
				Help:      "Total background jobs by name and outcome",
			},
			[]string{"job", "status"},
		),
	}
}
