package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sasmit/log-pipeline/internal/adapter/metrics"
	"github.com/sasmit/log-pipeline/internal/adapter/redact"
	"github.com/sasmit/log-pipeline/internal/domain"
	"github.com/sasmit/log-pipeline/internal/domain/mocks"
	"github.com/sasmit/log-pipeline/internal/usecase"
)

func newProcessHandler(repo domain.ProcessedLogRepository) *ProcessHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := usecase.NewProcessLogUseCase(repo, redact.NewPhonePrefixRedactor(), logger, 0)
	m := metrics.NewWorkerMetrics(prometheus.NewRegistry())
	return NewProcessHandler(uc, logger, m)
}

func envelopeFor(t *testing.T, entry domain.LogEntry) string {
	t.Helper()
	payload, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("failed to marshal entry: %v", err)
	}
	body, err := json.Marshal(domain.PushEnvelope{
		Message: &domain.PushMessage{Data: base64.StdEncoding.EncodeToString(payload)},
	})
	if err != nil {
		t.Fatalf("failed to marshal envelope: %v", err)
	}
	return string(body)
}

func doProcess(h *ProcessHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestProcessHandler_Success(t *testing.T) {
	repo := &mocks.MockProcessedLogRepository{}
	h := newProcessHandler(repo)
	entry := domain.LogEntry{TenantID: "acme", LogID: "L1", Text: "call 555-1234", Source: domain.SourceJSON}

	rr := doProcess(h, envelopeFor(t, entry))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rr.Code, rr.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not JSON: %v", err)
	}
	if body["status"] != "processed" || body["log_id"] != "L1" || body["tenant_id"] != "acme" {
		t.Errorf("unexpected response body: %v", body)
	}
	if _, ok := body["processing_time"]; !ok {
		t.Error("expected processing_time in response")
	}

	stored, err := repo.Get(context.Background(), "acme", "L1")
	if err != nil {
		t.Fatalf("expected stored document, got %v", err)
	}
	if stored.ModifiedText != "call [REDACTED]-1234" {
		t.Errorf("unexpected modified text: %q", stored.ModifiedText)
	}
}

func TestProcessHandler_ClientErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Missing message key", body: `{"subscription":"s"}`},
		{name: "Not JSON", body: `push!`},
		{name: "Bad base64", body: `{"message":{"data":"***"}}`},
		{
			name: "Missing tenant_id",
			body: func() string {
				data := base64.StdEncoding.EncodeToString([]byte(`{"log_id":"L1","text":"hi"}`))
				return `{"message":{"data":"` + data + `"}}`
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockProcessedLogRepository{}
			h := newProcessHandler(repo)

			rr := doProcess(h, tt.body)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d (body %s)", rr.Code, rr.Body.String())
			}
			if len(repo.Docs) != 0 {
				t.Error("nothing should be stored for a rejected delivery")
			}
		})
	}
}

func TestProcessHandler_StorageFailure(t *testing.T) {
	repo := &mocks.MockProcessedLogRepository{UpsertErr: errors.New("connection refused")}
	h := newProcessHandler(repo)
	entry := domain.LogEntry{TenantID: "acme", LogID: "L1", Text: "hello", Source: domain.SourceJSON}

	rr := doProcess(h, envelopeFor(t, entry))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 so the queue redelivers, got %d", rr.Code)
	}
}

func TestProcessHandler_MethodNotAllowed(t *testing.T) {
	h := newProcessHandler(&mocks.MockProcessedLogRepository{})

	req := httptest.NewRequest(http.MethodGet, "/process", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}
