package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sasmit/log-pipeline/internal/adapter/metrics"
	"github.com/sasmit/log-pipeline/internal/adapter/queue/redisqueue"
	"github.com/sasmit/log-pipeline/internal/pkg/config"
	"github.com/sasmit/log-pipeline/internal/pkg/logger"
	"github.com/sasmit/log-pipeline/internal/usecase"
)

const metricsAddr = ":9091"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting push bridge")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stopChan
		log.Info("shutdown signal received, stopping bridge...")
		cancel()
	}()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	consumerName, err := os.Hostname()
	if err != nil {
		log.Warn("could not get hostname for consumer name, using default", "error", err)
		consumerName = "bridge-default"
	}

	consumer, err := redisqueue.NewConsumer(redisClient, cfg.QueueStream, cfg.QueueDLQStream, cfg.QueueGroup, consumerName, log)
	if err != nil {
		log.Error("failed to create stream consumer", "error", err)
		os.Exit(1)
	}

	m := metrics.NewBridgeMetrics(prometheus.DefaultRegisterer)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Info("starting bridge metrics server", "addr", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil && err != http.ErrServerClosed {
			log.Error("bridge metrics server failed", "error", err)
		}
	}()

	client := &http.Client{Timeout: 2 * time.Minute}
	deliverUseCase := usecase.NewDeliverLogsUseCase(consumer, client, cfg.WorkerURL, cfg.QueueGroup, log, cfg.BridgeBatchSize, cfg.BridgeRedeliverIdle, m)

	ticker := time.NewTicker(cfg.BridgeInterval)
	defer ticker.Stop()

	log.Info("bridge started, delivering messages", "stream", cfg.QueueStream, "group", cfg.QueueGroup, "consumer", consumerName, "worker_url", cfg.WorkerURL)

Loop:
	for {
		select {
		case <-ticker.C:
			if _, err := deliverUseCase.DeliverBatch(ctx); err != nil {
				log.Error("error delivering batch", "error", err)
			}
		case <-ctx.Done():
			log.Info("context cancelled, shutting down delivery loop")
			break Loop
		}
	}

	log.Info("bridge shut down gracefully")
}
