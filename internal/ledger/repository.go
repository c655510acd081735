package ledger

import (
	"context"

	"github.com/stockward/inventory-service/internal/ledger/dto"
	"github.com/stockward/inventory-service/internal/model"
)

// Repository is the append-only persistence boundary of the movement
// ledger. There is deliberately no update or delete operation.
type Repository interface {
	Insert(ctx context.Context, m *model.StockMovement) error
	Find(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error)
}
