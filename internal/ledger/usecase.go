package ledger

import (
	"context"
	"time"

	"github.com/stockward/inventory-service/internal/ledger/dto"
	"github.com/stockward/inventory-service/internal/model"
)

// Recorder is the narrow write surface the other engine components depend
// on. Every quantity-changing operation appends exactly one entry.
type Recorder interface {
	Record(ctx context.Context, entry *model.StockMovement) (*model.StockMovement, error)
}

type UseCase interface {
	Recorder

	FindByProduct(ctx context.Context, productID string, page, pageSize int) ([]model.StockMovement, int, error)
	FindByWarehouse(ctx context.Context, warehouseID string, page, pageSize int) ([]model.StockMovement, int, error)
	FindByDateRange(ctx context.Context, from, to time.Time, page, pageSize int) ([]model.StockMovement, int, error)
	FindByReference(ctx context.Context, referenceType, referenceID string) ([]model.StockMovement, int, error)
	List(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error)

	// Summarize folds all matching entries into inbound/outbound totals.
	// The fold is the audit source of truth: replaying it from an empty
	// state must reproduce the materialized ProductInventory quantity.
	Summarize(ctx context.Context, productID string, warehouseID *string) (*model.MovementSummary, error)
}
