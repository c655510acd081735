package inventory

import (
	"context"

	"github.com/stockward/inventory-service/internal/inventory/dto"
	"github.com/stockward/inventory-service/internal/model"
)

// StockHolder is the slice of the quantity engine the reservation
// lifecycle builds on. Each operation runs under the per-key lock, keeps
// available = quantity - reserved intact, appends the matching ledger
// entry and re-evaluates alert rules.
type StockHolder interface {
	// ReserveStock moves qty from available into reserved.
	ReserveStock(ctx context.Context, productID, warehouseID string, qty int, reservationID, performedBy string) (*model.ProductInventory, error)
	// ReleaseStock returns qty from reserved back to available.
	ReleaseStock(ctx context.Context, productID, warehouseID string, qty int, reservationID, performedBy string) (*model.ProductInventory, error)
	// ConsumeReserved removes qty from both quantity and reserved: the
	// stock has left the building.
	ConsumeReserved(ctx context.Context, productID, warehouseID string, qty int, reservationID, orderID *string, performedBy string) (*model.ProductInventory, error)
}

type UseCase interface {
	StockHolder

	Receive(ctx context.Context, input *dto.ReceiveInput) (*model.ProductInventory, error)
	Adjust(ctx context.Context, input *dto.AdjustInput) (*model.ProductInventory, error)
	Transfer(ctx context.Context, input *dto.TransferInput) error
	ReceiveReturn(ctx context.Context, input *dto.ReturnInput) (*model.ProductInventory, error)
	// DeductSale ships stock sold outside the reservation flow (direct
	// POS sales arriving on the order events topic).
	DeductSale(ctx context.Context, productID, warehouseID string, qty int, orderID, performedBy string) (*model.ProductInventory, error)

	GetStockLevels(ctx context.Context, productID string) (*model.StockSummary, error)
	CheckReorderRequirements(ctx context.Context, f *dto.ReorderFilters) ([]model.ProductInventory, int, error)
}
