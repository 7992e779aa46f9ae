package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GatewayMetrics holds all Prometheus metrics for the ingestion gateway.
type GatewayMetrics struct {
	EntriesTotal   *prometheus.CounterVec
	PublishSeconds prometheus.Histogram
}

// NewGatewayMetrics initializes and registers the gateway metrics on reg.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	factory := promauto.With(reg)
	return &GatewayMetrics{
		EntriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "log_pipeline",
			Subsystem: "gateway",
			Name:      "entries_total",
			Help:      "Total number of ingest requests by status and source.",
		}, []string{"status", "source"}), // status: accepted, invalid, unsupported_media_type, publish_error
		PublishSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "log_pipeline",
			Subsystem: "gateway",
			Name:      "publish_seconds",
			Help:      "Latency of the synchronous queue publish hand-off.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// WorkerMetrics holds all Prometheus metrics for the processing worker.
type WorkerMetrics struct {
	ProcessedTotal    *prometheus.CounterVec
	ProcessingSeconds prometheus.Histogram
}

// NewWorkerMetrics initializes and registers the worker metrics on reg.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		ProcessedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "log_pipeline",
			Subsystem: "worker",
			Name:      "processed_total",
			Help:      "Total number of push deliveries by outcome.",
		}, []string{"status"}), // status: processed, rejected, storage_error
		ProcessingSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "log_pipeline",
			Subsystem: "worker",
			Name:      "processing_seconds",
			Help:      "End-to-end handling time per delivery, including the simulated cost.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// BridgeMetrics holds all Prometheus metrics for the push bridge.
type BridgeMetrics struct {
	DeliveriesTotal *prometheus.CounterVec
}

// NewBridgeMetrics initializes and registers the bridge metrics on reg.
func NewBridgeMetrics(reg prometheus.Registerer) *BridgeMetrics {
	factory := promauto.With(reg)
	return &BridgeMetrics{
		DeliveriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "log_pipeline",
			Subsystem: "bridge",
			Name:      "deliveries_total",
			Help:      "Total number of push attempts by outcome.",
		}, []string{"outcome"}), // outcome: acked, dead_lettered, pending
	}
}
