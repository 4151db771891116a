package repository

import (
	"context"

	"github.com/gpudex/a100-index-backend/internal/models"
)

// DefaultHistoryLimit is the number of rows History returns when the
// caller does not specify a limit.
const DefaultHistoryLimit = 30

// IndexStore is the append-only ledger of index computations. Append is the
// only write path; rows are never mutated afterwards.
type IndexStore interface {
	// Append inserts a record and returns it with the assigned id and
	// created_at. Records missing recorded_at or a positive index_price
	// are rejected without a partial insert.
	Append(ctx context.Context, rec *models.IndexRecord) (*models.IndexRecord, error)

	// Latest returns the row with the greatest created_at, or nil if the
	// ledger is empty. An empty ledger is not an error.
	Latest(ctx context.Context) (*models.IndexRecord, error)

	// History returns up to limit validated rows (validation_passed = true),
	// most recent first by created_at. A limit <= 0 yields an empty slice.
	History(ctx context.Context, limit int) ([]models.IndexRecord, error)

	// Ledger returns up to limit rows regardless of validation status,
	// most recent first. Used for audit views.
	Ledger(ctx context.Context, limit int) ([]models.IndexRecord, error)
}
