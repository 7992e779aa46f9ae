package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sasmit/log-pipeline/internal/adapter/metrics"
	"github.com/sasmit/log-pipeline/internal/domain"
)

// DeliverLogsUseCase is the push side of the queue: it reads buffered
// messages, wraps each in a push envelope, and POSTs it to the worker. The
// worker's status class drives the queue bookkeeping:
//
//	2xx  acknowledge, the message is done
//	4xx  acknowledge and dead-letter, a structural error never self-heals
//	5xx  leave pending, the message is reclaimed and redelivered later
type DeliverLogsUseCase struct {
	consumer      domain.Consumer
	client        *http.Client
	workerURL     string
	subscription  string
	logger        *slog.Logger
	batchSize     int
	redeliverIdle time.Duration
	metrics       *metrics.BridgeMetrics
}

// NewDeliverLogsUseCase creates a new DeliverLogsUseCase. m may be nil.
func NewDeliverLogsUseCase(consumer domain.Consumer, client *http.Client, workerURL, subscription string, logger *slog.Logger, batchSize int, redeliverIdle time.Duration, m *metrics.BridgeMetrics) *DeliverLogsUseCase {
	return &DeliverLogsUseCase{
		consumer:      consumer,
		client:        client,
		workerURL:     workerURL,
		subscription:  subscription,
		logger:        logger,
		batchSize:     batchSize,
		redeliverIdle: redeliverIdle,
		metrics:       m,
	}
}

func (uc *DeliverLogsUseCase) countOutcome(outcome string) {
	if uc.metrics != nil {
		uc.metrics.DeliveriesTotal.WithLabelValues(outcome).Inc()
	}
}

// DeliverBatch pushes one batch of new messages plus any reclaimed pending
// ones, and returns how many were delivered successfully.
func (uc *DeliverLogsUseCase) DeliverBatch(ctx context.Context) (int, error) {
	msgs, err := uc.consumer.ReadBatch(ctx, uc.batchSize)
	if err != nil {
		uc.logger.Error("failed to read message batch", "error", err)
		return 0, err
	}

	reclaimed, err := uc.consumer.ReclaimPending(ctx, uc.redeliverIdle, uc.batchSize)
	if err != nil {
		// Reclaim failure only delays redelivery; new messages still flow.
		uc.logger.Warn("failed to reclaim pending messages", "error", err)
	} else if len(reclaimed) > 0 {
		uc.logger.Info("redelivering pending messages", "count", len(reclaimed))
		msgs = append(msgs, reclaimed...)
	}

	if len(msgs) == 0 {
		return 0, nil
	}

	var acked []string
	var dead []domain.QueuedMessage
	delivered := 0

	for _, msg := range msgs {
		status, err := uc.push(ctx, msg)
		switch {
		case err != nil:
			// Transport failure: leave pending for reclaim.
			uc.logger.Warn("worker unreachable, leaving message pending", "message_id", msg.MessageID, "error", err)
			uc.countOutcome("pending")
		case status >= 200 && status < 300:
			acked = append(acked, msg.MessageID)
			delivered++
			uc.countOutcome("acked")
		case status >= 400 && status < 500:
			uc.logger.Warn("worker rejected message, dead-lettering", "message_id", msg.MessageID, "status", status)
			dead = append(dead, msg)
			uc.countOutcome("dead_lettered")
		default:
			uc.logger.Warn("worker failed transiently, leaving message pending", "message_id", msg.MessageID, "status", status)
			uc.countOutcome("pending")
		}
	}

	if len(acked) > 0 {
		if err := uc.consumer.Ack(ctx, acked...); err != nil {
			// The documents are persisted but not acked; the upsert makes
			// the coming redelivery harmless.
			uc.logger.Error("failed to ack delivered messages", "error", err)
			return delivered, err
		}
	}

	if len(dead) > 0 {
		if err := uc.consumer.DeadLetter(ctx, dead...); err != nil {
			uc.logger.Error("failed to dead-letter messages", "error", err)
			return delivered, err
		}
	}

	return delivered, nil
}

func (uc *DeliverLogsUseCase) push(ctx context.Context, msg domain.QueuedMessage) (int, error) {
	envelope := domain.PushEnvelope{
		Message: &domain.PushMessage{
			Data:        base64.StdEncoding.EncodeToString(msg.Payload),
			MessageID:   msg.MessageID,
			PublishTime: msg.PublishTime,
		},
		Subscription: uc.subscription,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return 0, fmt.Errorf("marshal push envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uc.workerURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := uc.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
