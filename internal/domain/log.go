package domain

import (
	"strings"
	"time"
)

// Source records which ingestion encoding produced a log entry. It is set by
// the gateway and never client-supplied.
type Source string

const (
	SourceJSON       Source = "json"
	SourceTextUpload Source = "text_upload"
)

// Valid reports whether s is one of the known ingestion sources.
func (s Source) Valid() bool {
	return s == SourceJSON || s == SourceTextUpload
}

// LogEntry is the canonical message placed on the queue. Every entry that
// reaches the queue has all four fields populated and non-blank text; the
// gateway is the sole validation boundary, the worker only trusts or rejects.
type LogEntry struct {
	TenantID string `json:"tenant_id"`
	LogID    string `json:"log_id"`
	Text     string `json:"text"`
	Source   Source `json:"source"`
}

// NewLogEntry validates and constructs a canonical LogEntry. Text is kept as
// received; only its trimmed form is checked for emptiness.
func NewLogEntry(tenantID, logID, text string, source Source) (LogEntry, error) {
	if tenantID == "" {
		return LogEntry{}, ErrMissingTenant
	}
	if strings.TrimSpace(text) == "" {
		return LogEntry{}, ErrEmptyText
	}
	if logID == "" || !source.Valid() {
		return LogEntry{}, ErrIncompletePayload
	}
	return LogEntry{
		TenantID: tenantID,
		LogID:    logID,
		Text:     text,
		Source:   source,
	}, nil
}

// ProcessedLog is the document the worker upserts after redaction. Identity is
// the composite key (TenantID, LogID): redelivery rewrites the same document
// with identical content except ProcessedAt, which advances. Last-write-wins
// on the timestamp is the accepted deviation from full idempotence.
type ProcessedLog struct {
	TenantID       string        `json:"tenant_id"`
	LogID          string        `json:"log_id"`
	Source         Source        `json:"source"`
	OriginalText   string        `json:"original_text"`
	ModifiedText   string        `json:"modified_data"`
	ProcessedAt    time.Time     `json:"processed_at"`
	ProcessingTime time.Duration `json:"-"`
	TextLength     int           `json:"text_length"`
}
