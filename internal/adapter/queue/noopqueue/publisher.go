package noopqueue

import (
	"context"
	"log/slog"

	"github.com/sasmit/log-pipeline/internal/domain"
)

// Publisher is the disconnected-mode publisher: entries are validated and
// accepted exactly as in a connected deployment, but the hand-off is a
// diagnostic log line instead of a queue write. This keeps the HTTP contract
// identical for local development and tests without a live broker.
type Publisher struct {
	logger *slog.Logger
}

// NewPublisher creates a no-op publisher.
func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger.With("component", "noop_publisher")}
}

// Publish logs the would-be publish and reports success.
func (p *Publisher) Publish(ctx context.Context, entry domain.LogEntry) error {
	p.logger.Info("queue disabled, dropping entry",
		"tenant_id", entry.TenantID,
		"log_id", entry.LogID,
		"source", entry.Source,
	)
	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}

var _ domain.Publisher = (*Publisher)(nil)
