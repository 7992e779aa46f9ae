package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/sasmit/log-pipeline/internal/domain"
)

// MockPublisher is a mock implementation of domain.Publisher for testing.
type MockPublisher struct {
	mu         sync.Mutex
	Published  []domain.LogEntry
	PublishErr error
	Closed     bool
}

func (m *MockPublisher) Publish(ctx context.Context, entry domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Published = append(m.Published, entry)
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// MockProcessedLogRepository is an in-memory domain.ProcessedLogRepository.
type MockProcessedLogRepository struct {
	mu        sync.Mutex
	Docs      map[string]domain.ProcessedLog
	Upserts   int
	UpsertErr error
	GetErr    error
}

func key(tenantID, logID string) string {
	return tenantID + "/" + logID
}

func (m *MockProcessedLogRepository) Upsert(ctx context.Context, log domain.ProcessedLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	if m.Docs == nil {
		m.Docs = make(map[string]domain.ProcessedLog)
	}
	m.Docs[key(log.TenantID, log.LogID)] = log
	m.Upserts++
	return nil
}

func (m *MockProcessedLogRepository) Get(ctx context.Context, tenantID, logID string) (domain.ProcessedLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domain.ProcessedLog{}, m.GetErr
	}
	doc, ok := m.Docs[key(tenantID, logID)]
	if !ok {
		return domain.ProcessedLog{}, domain.ErrNotFound
	}
	return doc, nil
}

// MockConsumer is a mock implementation of domain.Consumer for testing.
type MockConsumer struct {
	mu            sync.Mutex
	ReadResult    []domain.QueuedMessage
	ReclaimResult []domain.QueuedMessage
	Acked         []string
	DeadLettered  []domain.QueuedMessage
	ReadErr       error
	ReclaimErr    error
	AckErr        error
	DeadLetterErr error
}

func (m *MockConsumer) ReadBatch(ctx context.Context, count int) ([]domain.QueuedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	msgs := m.ReadResult
	m.ReadResult = nil
	return msgs, nil
}

func (m *MockConsumer) ReclaimPending(ctx context.Context, minIdle time.Duration, count int) ([]domain.QueuedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReclaimErr != nil {
		return nil, m.ReclaimErr
	}
	msgs := m.ReclaimResult
	m.ReclaimResult = nil
	return msgs, nil
}

func (m *MockConsumer) Ack(ctx context.Context, messageIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AckErr != nil {
		return m.AckErr
	}
	m.Acked = append(m.Acked, messageIDs...)
	return nil
}

func (m *MockConsumer) DeadLetter(ctx context.Context, msgs ...domain.QueuedMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeadLetterErr != nil {
		return m.DeadLetterErr
	}
	m.DeadLettered = append(m.DeadLettered, msgs...)
	return nil
}
