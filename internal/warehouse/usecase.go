package warehouse

import (
	"context"

	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/warehouse/dto"
)

// CapacityManager is the only component allowed to mutate warehouse
// occupancy. The quantity engine calls it for every physical stock change.
type CapacityManager interface {
	HasCapacity(ctx context.Context, warehouseID string, qty int) (bool, error)
	UpdateOccupancy(ctx context.Context, warehouseID string, delta int) (*model.Warehouse, error)
}

type UseCase interface {
	CapacityManager

	Create(ctx context.Context, input *dto.CreateWarehouseInput) (*model.Warehouse, error)
	Update(ctx context.Context, id string, input *dto.UpdateWarehouseInput) (*model.Warehouse, error)
	Deactivate(ctx context.Context, id string) (*model.Warehouse, error)
	GetByID(ctx context.Context, id string) (*model.Warehouse, error)
	List(ctx context.Context, activeOnly bool) ([]model.Warehouse, error)
}
