package domain

import (
	"context"
	"time"
)

// Publisher is the producing side of the queue. Publish blocks until the
// backend locally acknowledges receipt; it never waits for downstream
// processing.
type Publisher interface {
	// Publish places one canonical log entry on the queue.
	Publish(ctx context.Context, entry LogEntry) error

	// Close flushes and releases the underlying connection.
	Close() error
}

// QueuedMessage is one delivery read from the queue by the push bridge.
// MessageID identifies the delivery (not the log entry) and is what gets
// acknowledged or dead-lettered.
type QueuedMessage struct {
	MessageID   string
	Payload     []byte // JSON-encoded LogEntry
	PublishTime time.Time
}

// Consumer is the delivering side of the queue, used by the push bridge. The
// backend retains unacknowledged messages and hands them out again via
// ReclaimPending, which is what gives the pipeline its at-least-once property.
type Consumer interface {
	// ReadBatch returns up to count new messages for this consumer, blocking
	// briefly when the stream is empty.
	ReadBatch(ctx context.Context, count int) ([]QueuedMessage, error)

	// ReclaimPending returns messages that were delivered but not
	// acknowledged within minIdle, making them eligible for redelivery.
	ReclaimPending(ctx context.Context, minIdle time.Duration, count int) ([]QueuedMessage, error)

	// Ack marks deliveries as done so they are never redelivered.
	Ack(ctx context.Context, messageIDs ...string) error

	// DeadLetter parks messages whose processing failed permanently, then
	// acknowledges them on the main stream.
	DeadLetter(ctx context.Context, msgs ...QueuedMessage) error
}

// PushMessage is the inner wrapper of a push envelope. Data carries the log
// entry JSON as a base64 string; it stays a string here so the worker can
// classify a bad encoding as a payload error rather than an envelope error.
type PushMessage struct {
	Data        string            `json:"data"`
	MessageID   string            `json:"messageId,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	PublishTime time.Time         `json:"publishTime,omitzero"`
}

// PushEnvelope is the wrapper format the queue uses to deliver a message to
// the worker's HTTP endpoint.
type PushEnvelope struct {
	Message      *PushMessage `json:"message"`
	Subscription string       `json:"subscription,omitempty"`
}
