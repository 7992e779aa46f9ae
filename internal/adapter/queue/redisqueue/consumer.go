package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sasmit/log-pipeline/internal/domain"
)

const readBlock = 2 * time.Second

// Consumer implements domain.Consumer on a Redis Stream consumer group.
// Unacknowledged deliveries stay in the group's pending entries list and come
// back through ReclaimPending, which is what realizes at-least-once delivery.
type Consumer struct {
	client    *redis.Client
	stream    string
	dlqStream string
	group     string
	name      string
	logger    *slog.Logger
}

// NewConsumer creates the consumer group if needed and returns a Consumer
// bound to it.
func NewConsumer(client *redis.Client, stream, dlqStream, group, name string, logger *slog.Logger) (*Consumer, error) {
	c := &Consumer{
		client:    client,
		stream:    stream,
		dlqStream: dlqStream,
		group:     group,
		name:      name,
		logger:    logger.With("component", "redis_consumer"),
	}

	err := client.XGroupCreateMkStream(context.Background(), stream, group, "0").Err()
	if err != nil && !isBusyGroupError(err) {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}
	return c, nil
}

// ReadBatch returns up to count new messages, blocking briefly when the
// stream is empty.
func (c *Consumer) ReadBatch(ctx context.Context, count int) ([]domain.QueuedMessage, error) {
	args := &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.stream, ">"},
		Count:    int64(count),
		Block:    readBlock,
	}

	streams, err := c.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("xreadgroup from %s: %w", c.stream, err)
	}
	if len(streams) == 0 {
		return nil, nil
	}

	return c.toMessages(streams[0].Messages), nil
}

// ReclaimPending takes over messages another (or a previous) delivery attempt
// left unacknowledged for at least minIdle.
func (c *Consumer) ReclaimPending(ctx context.Context, minIdle time.Duration, count int) ([]domain.QueuedMessage, error) {
	args := &redis.XAutoClaimArgs{
		Stream:   c.stream,
		Group:    c.group,
		Consumer: c.name,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    int64(count),
	}

	msgs, _, err := c.client.XAutoClaim(ctx, args).Result()
	if err != nil {
		return nil, fmt.Errorf("xautoclaim from %s: %w", c.stream, err)
	}

	return c.toMessages(msgs), nil
}

// Ack marks deliveries as done.
func (c *Consumer) Ack(ctx context.Context, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, c.stream, c.group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("xack on %s: %w", c.stream, err)
	}
	return nil
}

// DeadLetter parks permanently failed messages on the DLQ stream, then
// acknowledges them so they are never redelivered.
func (c *Consumer) DeadLetter(ctx context.Context, msgs ...domain.QueuedMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: c.dlqStream,
			Values: map[string]interface{}{
				payloadField:      msg.Payload,
				"original_stream": c.stream,
				"original_msg_id": msg.MessageID,
				"failed_at":       time.Now().UTC().Format(time.RFC3339),
			},
		})
		ids = append(ids, msg.MessageID)
	}
	pipe.XAck(ctx, c.stream, c.group, ids...)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("dead-letter pipeline: %w", err)
	}
	c.logger.Warn("moved messages to DLQ", "count", len(msgs), "dlq", c.dlqStream)
	return nil
}

func (c *Consumer) toMessages(msgs []redis.XMessage) []domain.QueuedMessage {
	out := make([]domain.QueuedMessage, 0, len(msgs))
	for _, msg := range msgs {
		payload, ok := msg.Values[payloadField].(string)
		if !ok {
			c.logger.Warn("invalid message format in stream, skipping", "message_id", msg.ID)
			continue
		}
		out = append(out, domain.QueuedMessage{
			MessageID:   msg.ID,
			Payload:     []byte(payload),
			PublishTime: publishTimeFromID(msg.ID),
		})
	}
	return out
}

// publishTimeFromID recovers the enqueue time from a stream ID, which Redis
// forms as <unix-ms>-<seq>.
func publishTimeFromID(id string) time.Time {
	msPart, _, ok := strings.Cut(id, "-")
	if !ok {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(msPart, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func isBusyGroupError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}

var _ domain.Consumer = (*Consumer)(nil)
