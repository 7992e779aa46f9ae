package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/sasmit/log-pipeline/internal/adapter/metrics"
	"github.com/sasmit/log-pipeline/internal/domain"
)

const tenantHeader = "X-Tenant-ID"

// LogIngestor is what the handler needs from the ingest use case.
type LogIngestor interface {
	Ingest(ctx context.Context, tenantID, logID, text string, source domain.Source) (domain.LogEntry, error)
}

// IngestHandler handles HTTP requests for log ingestion.
type IngestHandler struct {
	useCase     LogIngestor
	logger      *slog.Logger
	maxBodySize int64
	metrics     *metrics.GatewayMetrics
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(uc LogIngestor, logger *slog.Logger, maxBodySize int64, m *metrics.GatewayMetrics) *IngestHandler {
	return &IngestHandler{
		useCase:     uc,
		logger:      logger,
		maxBodySize: maxBodySize,
		metrics:     m,
	}
}

type jsonIngestRequest struct {
	TenantID string `json:"tenant_id"`
	LogID    string `json:"log_id"`
	Text     string `json:"text"`
}

// ServeHTTP processes incoming log ingestion requests, dispatching on the
// declared content type.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	var entry domain.LogEntry
	var source domain.Source

	switch mediaType {
	case "application/json":
		source = domain.SourceJSON
		entry, err = h.ingestJSON(r)
	case "text/plain":
		source = domain.SourceTextUpload
		entry, err = h.ingestText(r)
	default:
		h.metrics.EntriesTotal.WithLabelValues("unsupported_media_type", "none").Inc()
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json or text/plain")
		return
	}

	if err != nil {
		h.writeIngestError(w, err, source)
		return
	}

	h.metrics.EntriesTotal.WithLabelValues("accepted", string(source)).Inc()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "accepted",
		"log_id": entry.LogID,
	})
}

func (h *IngestHandler) ingestJSON(r *http.Request) (domain.LogEntry, error) {
	var req jsonIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.LogEntry{}, wrapBodyError(err, domain.ErrInvalidPayload)
	}
	return h.publishTimed(r.Context(), req.TenantID, req.LogID, req.Text, domain.SourceJSON)
}

func (h *IngestHandler) ingestText(r *http.Request) (domain.LogEntry, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return domain.LogEntry{}, wrapBodyError(err, domain.ErrInvalidPayload)
	}
	return h.publishTimed(r.Context(), r.Header.Get(tenantHeader), "", string(body), domain.SourceTextUpload)
}

func (h *IngestHandler) publishTimed(ctx context.Context, tenantID, logID, text string, source domain.Source) (domain.LogEntry, error) {
	start := time.Now()
	entry, err := h.useCase.Ingest(ctx, tenantID, logID, text, source)
	if err == nil {
		h.metrics.PublishSeconds.Observe(time.Since(start).Seconds())
	}
	return entry, err
}

// wrapBodyError keeps MaxBytesError distinguishable while tagging everything
// else with the given sentinel.
func wrapBodyError(err error, sentinel error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return errors.Join(sentinel, err)
}

func (h *IngestHandler) writeIngestError(w http.ResponseWriter, err error, source domain.Source) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		h.metrics.EntriesTotal.WithLabelValues("invalid", string(source)).Inc()
		writeError(w, http.StatusRequestEntityTooLarge, "Payload too large")
	case errors.Is(err, domain.ErrInvalidPayload):
		h.metrics.EntriesTotal.WithLabelValues("invalid", string(source)).Inc()
		writeError(w, http.StatusBadRequest, "Invalid JSON")
	case errors.Is(err, domain.ErrMissingTenant):
		h.metrics.EntriesTotal.WithLabelValues("invalid", string(source)).Inc()
		writeError(w, http.StatusBadRequest, "Missing tenant_id")
	case errors.Is(err, domain.ErrEmptyText):
		h.metrics.EntriesTotal.WithLabelValues("invalid", string(source)).Inc()
		writeError(w, http.StatusBadRequest, "Missing or empty text")
	default:
		h.logger.Error("failed to queue log entry", "error", err)
		h.metrics.EntriesTotal.WithLabelValues("publish_error", string(source)).Inc()
		writeError(w, http.StatusInternalServerError, "Failed to queue log entry")
	}
}
