package warehouse

import (
	"context"

	"github.com/stockward/inventory-service/internal/model"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*model.Warehouse, error)
	GetByCode(ctx context.Context, code string) (*model.Warehouse, error)
	List(ctx context.Context, activeOnly bool) ([]model.Warehouse, error)
	Create(ctx context.Context, w *model.Warehouse) error
	Update(ctx context.Context, w *model.Warehouse) error

	// ApplyOccupancyDelta adds delta to current_occupancy in a single
	// conditional statement that keeps 0 <= occupancy <= capacity. It
	// returns the updated row, or nil when the condition did not hold.
	ApplyOccupancyDelta(ctx context.Context, id string, delta int) (*model.Warehouse, error)
}
