package alert

import (
	"context"

	"github.com/stockward/inventory-service/internal/alert/dto"
	"github.com/stockward/inventory-service/internal/model"
)

// Evaluator is the hook the quantity engine calls after every inventory
// state change. Evaluation updates rule state synchronously; notification
// dispatch is fire-and-forget.
type Evaluator interface {
	Evaluate(ctx context.Context, inv *model.ProductInventory)
}

type UseCase interface {
	Evaluator

	Configure(ctx context.Context, input *dto.ConfigureAlertInput) (*model.StockAlert, error)
	Acknowledge(ctx context.Context, id, userID string) (*model.StockAlert, error)
	Deactivate(ctx context.Context, id string) (*model.StockAlert, error)
	GetByID(ctx context.Context, id string) (*model.StockAlert, error)
	List(ctx context.Context, f *dto.AlertFilters) ([]model.StockAlert, int, error)
}
