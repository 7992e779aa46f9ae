package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/sasmit/log-pipeline/internal/adapter/redact"
	"github.com/sasmit/log-pipeline/internal/domain"
)

// ProcessLogUseCase handles one pushed queue message per invocation: decode,
// validate, redact, wait out the simulated processing cost, persist. Every
// invocation is a fresh attempt with no state carried between deliveries;
// redelivery safety comes entirely from the upsert keyed (tenant_id, log_id).
type ProcessLogUseCase struct {
	repo         domain.ProcessedLogRepository
	redactor     *redact.Redactor
	logger       *slog.Logger
	perCharDelay time.Duration
}

// NewProcessLogUseCase creates a new ProcessLogUseCase. perCharDelay models
// variable-cost work: processing sleeps that long per input character before
// the write.
func NewProcessLogUseCase(repo domain.ProcessedLogRepository, redactor *redact.Redactor, logger *slog.Logger, perCharDelay time.Duration) *ProcessLogUseCase {
	return &ProcessLogUseCase{
		repo:         repo,
		redactor:     redactor,
		logger:       logger,
		perCharDelay: perCharDelay,
	}
}

// Process consumes one raw push request body and returns the persisted
// document. Errors in the domain client tier (bad envelope, bad payload,
// missing fields) will never self-heal on redelivery and map to 4xx at the
// HTTP boundary; anything failing at the persist step is transient and maps
// to 5xx so the queue redelivers.
func (uc *ProcessLogUseCase) Process(ctx context.Context, body []byte) (domain.ProcessedLog, error) {
	var envelope domain.PushEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return domain.ProcessedLog{}, fmt.Errorf("%w: %v", domain.ErrMalformedEnvelope, err)
	}
	if envelope.Message == nil {
		return domain.ProcessedLog{}, fmt.Errorf("%w: missing message", domain.ErrMalformedEnvelope)
	}

	raw, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		return domain.ProcessedLog{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	var entry domain.LogEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.ProcessedLog{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	// Trust or reject: the gateway is the validation boundary, so a missing
	// field here is a producer defect, not something to repair.
	if entry.TenantID == "" || entry.LogID == "" || entry.Text == "" {
		return domain.ProcessedLog{}, domain.ErrIncompletePayload
	}

	modified := uc.redactor.Redact(entry.Text)

	textLength := utf8.RuneCountInString(entry.Text)
	processingTime := time.Duration(textLength) * uc.perCharDelay

	// The simulated cost is unconditional and must elapse before the write.
	if processingTime > 0 {
		select {
		case <-time.After(processingTime):
		case <-ctx.Done():
			return domain.ProcessedLog{}, ctx.Err()
		}
	}

	doc := domain.ProcessedLog{
		TenantID:       entry.TenantID,
		LogID:          entry.LogID,
		Source:         entry.Source,
		OriginalText:   entry.Text,
		ModifiedText:   modified,
		ProcessedAt:    time.Now().UTC(),
		ProcessingTime: processingTime,
		TextLength:     textLength,
	}

	if err := uc.repo.Upsert(ctx, doc); err != nil {
		uc.logger.Error("failed to persist processed log", "error", err, "tenant_id", doc.TenantID, "log_id", doc.LogID)
		return domain.ProcessedLog{}, fmt.Errorf("persist processed log: %w", err)
	}

	uc.logger.Info("processed log entry",
		"tenant_id", doc.TenantID,
		"log_id", doc.LogID,
		"text_length", doc.TextLength,
		"processing_time", doc.ProcessingTime,
	)
	return doc, nil
}
