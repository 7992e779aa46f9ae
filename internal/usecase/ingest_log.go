package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sasmit/log-pipeline/internal/domain"
)

// IngestLogUseCase turns validated input into exactly one canonical log entry
// and hands it to the queue. The publish is a synchronous hand-off: it waits
// for the queue's local acknowledgment, never for downstream processing.
type IngestLogUseCase struct {
	publisher domain.Publisher
	logger    *slog.Logger
}

// NewIngestLogUseCase creates a new IngestLogUseCase.
func NewIngestLogUseCase(publisher domain.Publisher, logger *slog.Logger) *IngestLogUseCase {
	return &IngestLogUseCase{
		publisher: publisher,
		logger:    logger,
	}
}

// Ingest validates, normalizes, and publishes one log entry. A missing logID
// is filled with a generated UUID; tenantID and text are validated in that
// order and never defaulted. On success the returned entry carries the
// resolved log ID.
func (uc *IngestLogUseCase) Ingest(ctx context.Context, tenantID, logID, text string, source domain.Source) (domain.LogEntry, error) {
	if logID == "" {
		logID = uuid.NewString()
	}

	entry, err := domain.NewLogEntry(tenantID, logID, text, source)
	if err != nil {
		return domain.LogEntry{}, err
	}

	if err := uc.publisher.Publish(ctx, entry); err != nil {
		uc.logger.Error("failed to publish log entry", "error", err, "tenant_id", entry.TenantID, "log_id", entry.LogID)
		return domain.LogEntry{}, fmt.Errorf("publish log entry: %w", err)
	}

	uc.logger.Debug("log entry queued", "tenant_id", entry.TenantID, "log_id", entry.LogID, "source", entry.Source)
	return entry, nil
}
