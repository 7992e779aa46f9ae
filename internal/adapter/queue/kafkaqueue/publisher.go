package kafkaqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sasmit/log-pipeline/internal/domain"
)

// Publisher implements domain.Publisher on a Kafka topic, for deployments
// where the broker's own push connector delivers to the worker. Messages are
// keyed by tenant so one tenant's entries land on one partition.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, errors.New("kafka publisher configuration incomplete: brokers and topic are required")
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},

		BatchTimeout: 100 * time.Millisecond,

		// Synchronous with leader ack: Publish returns only once the
		// broker has the message, which is the gateway's durability
		// hand-off point.
		RequiredAcks: kafka.RequireOne,
		Async:        false,

		WriteTimeout: 5 * time.Second,
		ReadTimeout:  5 * time.Second,

		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf("kafka writer: "+msg, args...))
		}),
	}

	logger.Info("kafka publisher created", "brokers", brokers, "topic", topic)

	return &Publisher{
		writer: w,
		logger: logger.With("component", "kafka_publisher"),
	}, nil
}

// Publish sends one canonical entry to the topic.
func (p *Publisher) Publish(ctx context.Context, entry domain.LogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(entry.TenantID),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to kafka topic: %w", err)
	}
	return nil
}

// Close flushes buffered messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ domain.Publisher = (*Publisher)(nil)
