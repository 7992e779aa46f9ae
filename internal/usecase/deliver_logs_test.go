package usecase

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sasmit/log-pipeline/internal/domain"
	"github.com/sasmit/log-pipeline/internal/domain/mocks"
)

func testMessages(ids ...string) []domain.QueuedMessage {
	msgs := make([]domain.QueuedMessage, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, domain.QueuedMessage{
			MessageID: id,
			Payload:   []byte(`{"tenant_id":"acme","log_id":"` + id + `","text":"hello","source":"json"}`),
		})
	}
	return msgs
}

func newDeliverUseCase(consumer domain.Consumer, workerURL string) *DeliverLogsUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDeliverLogsUseCase(consumer, &http.Client{Timeout: time.Second}, workerURL, "log-processors", logger, 16, 30*time.Second, nil)
}

func TestDeliverLogsUseCase_DeliverBatch(t *testing.T) {
	t.Run("Acks on success", func(t *testing.T) {
		var gotEnvelopes []domain.PushEnvelope
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var env domain.PushEnvelope
			if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
				t.Errorf("bridge sent an undecodable envelope: %v", err)
			}
			gotEnvelopes = append(gotEnvelopes, env)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		consumer := &mocks.MockConsumer{ReadResult: testMessages("m1", "m2")}
		uc := newDeliverUseCase(consumer, srv.URL)

		delivered, err := uc.DeliverBatch(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if delivered != 2 {
			t.Errorf("expected 2 delivered, got %d", delivered)
		}
		if len(consumer.Acked) != 2 {
			t.Errorf("expected 2 acks, got %d", len(consumer.Acked))
		}
		if len(consumer.DeadLettered) != 0 {
			t.Errorf("expected no dead letters, got %d", len(consumer.DeadLettered))
		}
		if len(gotEnvelopes) != 2 || gotEnvelopes[0].Message == nil || gotEnvelopes[0].Message.Data == "" {
			t.Error("expected push envelopes with base64 data")
		}
	})

	t.Run("Dead-letters on client error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		consumer := &mocks.MockConsumer{ReadResult: testMessages("m1")}
		uc := newDeliverUseCase(consumer, srv.URL)

		delivered, err := uc.DeliverBatch(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if delivered != 0 {
			t.Errorf("expected 0 delivered, got %d", delivered)
		}
		if len(consumer.DeadLettered) != 1 {
			t.Fatalf("expected 1 dead letter, got %d", len(consumer.DeadLettered))
		}
		if consumer.DeadLettered[0].MessageID != "m1" {
			t.Errorf("wrong message dead-lettered: %q", consumer.DeadLettered[0].MessageID)
		}
		if len(consumer.Acked) != 0 {
			t.Error("a dead-lettered message must not also be acked directly")
		}
	})

	t.Run("Leaves message pending on server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		consumer := &mocks.MockConsumer{ReadResult: testMessages("m1")}
		uc := newDeliverUseCase(consumer, srv.URL)

		delivered, err := uc.DeliverBatch(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if delivered != 0 {
			t.Errorf("expected 0 delivered, got %d", delivered)
		}
		if len(consumer.Acked) != 0 || len(consumer.DeadLettered) != 0 {
			t.Error("a transiently failed message must stay pending for redelivery")
		}
	})

	t.Run("Leaves message pending when worker unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		consumer := &mocks.MockConsumer{ReadResult: testMessages("m1")}
		uc := newDeliverUseCase(consumer, url)

		delivered, err := uc.DeliverBatch(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if delivered != 0 {
			t.Errorf("expected 0 delivered, got %d", delivered)
		}
		if len(consumer.Acked) != 0 || len(consumer.DeadLettered) != 0 {
			t.Error("an undeliverable message must stay pending")
		}
	})

	t.Run("Includes reclaimed pending messages", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		consumer := &mocks.MockConsumer{
			ReadResult:    testMessages("m1"),
			ReclaimResult: testMessages("stale1"),
		}
		uc := newDeliverUseCase(consumer, srv.URL)

		delivered, err := uc.DeliverBatch(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if delivered != 2 {
			t.Errorf("expected 2 delivered including reclaimed, got %d", delivered)
		}
	})

	t.Run("No messages", func(t *testing.T) {
		consumer := &mocks.MockConsumer{}
		uc := newDeliverUseCase(consumer, "http://localhost:0")

		delivered, err := uc.DeliverBatch(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if delivered != 0 {
			t.Errorf("expected 0 delivered, got %d", delivered)
		}
	})
}
