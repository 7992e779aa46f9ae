package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/sasmit/log-pipeline/internal/adapter/api"
	"github.com/sasmit/log-pipeline/internal/adapter/metrics"
	"github.com/sasmit/log-pipeline/internal/adapter/queue/kafkaqueue"
	"github.com/sasmit/log-pipeline/internal/adapter/queue/noopqueue"
	"github.com/sasmit/log-pipeline/internal/adapter/queue/redisqueue"
	"github.com/sasmit/log-pipeline/internal/domain"
	"github.com/sasmit/log-pipeline/internal/pkg/config"
	"github.com/sasmit/log-pipeline/internal/pkg/logger"
	"github.com/sasmit/log-pipeline/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewGatewayMetrics(prometheus.DefaultRegisterer)

	publisher, err := buildPublisher(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize queue publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	ingestUseCase := usecase.NewIngestLogUseCase(publisher, log)
	router := api.NewGatewayRouter(cfg, log, ingestUseCase, m, prometheus.DefaultGatherer)

	server := &http.Server{
		Addr:         cfg.GatewayAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Info("starting ingestion gateway", "addr", server.Addr, "queue_backend", cfg.QueueBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("gateway server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down gateway...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("gateway shutdown failed", "error", err)
	}

	log.Info("gateway shut down gracefully")
}

// buildPublisher selects the queue backend. "none" keeps the HTTP contract
// intact without a live broker, for local development and tests.
func buildPublisher(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.Publisher, error) {
	switch cfg.QueueBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return redisqueue.NewPublisher(client, cfg.QueueStream, log), nil
	case "kafka":
		return kafkaqueue.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	case "none":
		log.Warn("no queue backend configured, running in disconnected mode")
		return noopqueue.NewPublisher(log), nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}
}
