package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sasmit/log-pipeline/internal/adapter/metrics"
	"github.com/sasmit/log-pipeline/internal/domain"
)

// LogProcessor is what the handler needs from the process use case.
type LogProcessor interface {
	Process(ctx context.Context, body []byte) (domain.ProcessedLog, error)
}

// ProcessHandler receives push envelopes from the queue. Its status codes are
// the retry protocol: 200 acknowledges the message, 400 tells the queue the
// message shape is broken and redelivery cannot help, 500 asks the queue to
// redeliver.
type ProcessHandler struct {
	useCase LogProcessor
	logger  *slog.Logger
	metrics *metrics.WorkerMetrics
}

// NewProcessHandler creates a new ProcessHandler.
func NewProcessHandler(uc LogProcessor, logger *slog.Logger, m *metrics.WorkerMetrics) *ProcessHandler {
	return &ProcessHandler{
		useCase: uc,
		logger:  logger,
		metrics: m,
	}
}

// ServeHTTP handles one pushed message per invocation.
func (h *ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.metrics.ProcessedTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	start := time.Now()
	doc, err := h.useCase.Process(r.Context(), body)
	h.metrics.ProcessingSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		if domain.IsClientError(err) {
			h.logger.Warn("rejected push delivery", "error", err)
			h.metrics.ProcessedTotal.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("processing failed, requesting redelivery", "error", err)
		h.metrics.ProcessedTotal.WithLabelValues("storage_error").Inc()
		writeError(w, http.StatusInternalServerError, "Processing failed")
		return
	}

	h.metrics.ProcessedTotal.WithLabelValues("processed").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "processed",
		"log_id":          doc.LogID,
		"tenant_id":       doc.TenantID,
		"processing_time": doc.ProcessingTime.Seconds(),
	})
}
