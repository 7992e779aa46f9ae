package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sasmit/log-pipeline/internal/adapter/api"
	"github.com/sasmit/log-pipeline/internal/adapter/metrics"
	"github.com/sasmit/log-pipeline/internal/adapter/redact"
	"github.com/sasmit/log-pipeline/internal/adapter/repository/postgres"
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

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	m := metrics.NewWorkerMetrics(prometheus.DefaultRegisterer)
	repo := postgres.NewProcessedLogRepository(db, log)
	processUseCase := usecase.NewProcessLogUseCase(repo, redact.NewPhonePrefixRedactor(), log, cfg.PerCharDelay)
	router := api.NewWorkerRouter(log, processUseCase, m, prometheus.DefaultGatherer)

	// The simulated per-character cost holds a handler slot for the whole
	// delivery, so the write timeout has to outlast the longest entry.
	server := &http.Server{
		Addr:         cfg.WorkerAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Info("starting processing worker", "addr", server.Addr, "per_char_delay", cfg.PerCharDelay)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("worker server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("worker shutdown failed", "error", err)
	}

	log.Info("worker shut down gracefully")
}
