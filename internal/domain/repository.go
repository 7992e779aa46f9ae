package domain

import "context"

// ProcessedLogRepository is the tenant-partitioned document store for
// processed logs. Implementations must make Upsert a full replacement of any
// prior document at (TenantID, LogID) and atomic per document; that is the
// whole transaction discipline the pipeline relies on.
type ProcessedLogRepository interface {
	// Upsert creates or fully overwrites the document keyed by
	// (log.TenantID, log.LogID).
	Upsert(ctx context.Context, log ProcessedLog) error

	// Get fetches a single processed log, or ErrNotFound.
	Get(ctx context.Context, tenantID, logID string) (ProcessedLog, error)
}
