package redisqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/sasmit/log-pipeline/internal/domain"
)

const payloadField = "payload"

// Publisher implements domain.Publisher on a Redis Stream. XAdd returning the
// assigned stream ID is the queue's local acknowledgment: once it succeeds the
// entry is durably queued.
type Publisher struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// NewPublisher creates a Redis Streams publisher for the given stream.
func NewPublisher(client *redis.Client, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "redis_publisher"),
	}
}

// Publish appends one canonical entry to the stream.
func (p *Publisher) Publish(ctx context.Context, entry domain.LogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{payloadField: payload},
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("xadd to stream %s: %w", p.stream, err)
	}

	p.logger.Debug("published log entry", "stream", p.stream, "message_id", id, "log_id", entry.LogID)
	return nil
}

// Close releases the underlying connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

var _ domain.Publisher = (*Publisher)(nil)
