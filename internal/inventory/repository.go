package inventory

import (
	"context"

	"github.com/stockward/inventory-service/internal/inventory/dto"
	"github.com/stockward/inventory-service/internal/model"
)

type Repository interface {
	GetByProductAndWarehouse(ctx context.Context, productID, warehouseID string) (*model.ProductInventory, error)
	// LevelsByProduct joins warehouse codes onto every row of the product.
	LevelsByProduct(ctx context.Context, productID string) ([]model.StockLevel, error)
	// FindReorderNeeded returns rows with quantity <= reorder_point.
	FindReorderNeeded(ctx context.Context, f *dto.ReorderFilters) ([]model.ProductInventory, int, error)
	Create(ctx context.Context, inv *model.ProductInventory) error
	Update(ctx context.Context, inv *model.ProductInventory) error
}
