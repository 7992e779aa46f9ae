package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sasmit/log-pipeline/internal/adapter/api/handler"
	"github.com/sasmit/log-pipeline/internal/adapter/api/middleware"
	"github.com/sasmit/log-pipeline/internal/adapter/metrics"
	"github.com/sasmit/log-pipeline/internal/pkg/config"
)

// Version reported by the liveness descriptors.
const Version = "1.0.0"

const (
	GatewayService = "log-ingestion-gateway"
	WorkerService  = "log-processing-worker"
)

// NewGatewayRouter wires the ingestion gateway's HTTP surface.
func NewGatewayRouter(cfg *config.Config, logger *slog.Logger, ingestUseCase handler.LogIngestor, m *metrics.GatewayMetrics, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	ingestHandler := handler.NewIngestHandler(ingestUseCase, logger, cfg.MaxBodySize, m)

	mux.Handle("POST /ingest", ingestHandler)
	mux.HandleFunc("GET /{$}", handler.Liveness(GatewayService, Version))
	mux.HandleFunc("GET /health", handler.Health())
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return middleware.Logging(logger)(mux)
}

// NewWorkerRouter wires the processing worker's HTTP surface.
func NewWorkerRouter(logger *slog.Logger, processUseCase handler.LogProcessor, m *metrics.WorkerMetrics, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	processHandler := handler.NewProcessHandler(processUseCase, logger, m)

	mux.Handle("POST /process", processHandler)
	mux.HandleFunc("GET /{$}", handler.Liveness(WorkerService, Version))
	mux.HandleFunc("GET /health", handler.Health())
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return middleware.Logging(logger)(mux)
}
