package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sasmit/log-pipeline/internal/domain"
	"github.com/sasmit/log-pipeline/internal/domain/mocks"
)

func TestIngestLogUseCase_Ingest(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("JSON entry keeps supplied log ID", func(t *testing.T) {
		mockPub := &mocks.MockPublisher{}
		uc := NewIngestLogUseCase(mockPub, logger)

		entry, err := uc.Ingest(context.Background(), "acme", "L1", "call 555-1234", domain.SourceJSON)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if entry.LogID != "L1" {
			t.Errorf("expected supplied log ID to be kept, got %q", entry.LogID)
		}
		if entry.Source != domain.SourceJSON {
			t.Errorf("expected source %q, got %q", domain.SourceJSON, entry.Source)
		}
		if len(mockPub.Published) != 1 {
			t.Fatalf("expected 1 published entry, got %d", len(mockPub.Published))
		}
		if mockPub.Published[0] != entry {
			t.Error("published entry does not match returned entry")
		}
	})

	t.Run("Generated log IDs are distinct", func(t *testing.T) {
		mockPub := &mocks.MockPublisher{}
		uc := NewIngestLogUseCase(mockPub, logger)

		first, err := uc.Ingest(context.Background(), "acme", "", "plain text body", domain.SourceTextUpload)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := uc.Ingest(context.Background(), "acme", "", "plain text body", domain.SourceTextUpload)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if first.LogID == "" || second.LogID == "" {
			t.Fatal("expected log IDs to be generated")
		}
		if first.LogID == second.LogID {
			t.Errorf("expected distinct generated log IDs, both were %q", first.LogID)
		}
	})

	t.Run("Missing tenant", func(t *testing.T) {
		mockPub := &mocks.MockPublisher{}
		uc := NewIngestLogUseCase(mockPub, logger)

		_, err := uc.Ingest(context.Background(), "", "L1", "some text", domain.SourceJSON)

		if !errors.Is(err, domain.ErrMissingTenant) {
			t.Fatalf("expected ErrMissingTenant, got %v", err)
		}
		if len(mockPub.Published) != 0 {
			t.Error("nothing should be published for an invalid entry")
		}
	})

	t.Run("Whitespace-only text", func(t *testing.T) {
		mockPub := &mocks.MockPublisher{}
		uc := NewIngestLogUseCase(mockPub, logger)

		_, err := uc.Ingest(context.Background(), "acme", "L1", "   \t\n", domain.SourceJSON)

		if !errors.Is(err, domain.ErrEmptyText) {
			t.Fatalf("expected ErrEmptyText, got %v", err)
		}
		if len(mockPub.Published) != 0 {
			t.Error("nothing should be published for blank text")
		}
	})

	t.Run("Publisher error", func(t *testing.T) {
		mockPub := &mocks.MockPublisher{PublishErr: errors.New("broker unavailable")}
		uc := NewIngestLogUseCase(mockPub, logger)

		_, err := uc.Ingest(context.Background(), "acme", "L1", "some text", domain.SourceJSON)

		if err == nil {
			t.Fatal("expected an error, got nil")
		}
		if domain.IsClientError(err) {
			t.Error("publish failure must not be classified as a client error")
		}
	})
}
