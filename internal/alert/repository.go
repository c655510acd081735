package alert

import (
	"context"

	"github.com/stockward/inventory-service/internal/alert/dto"
	"github.com/stockward/inventory-service/internal/model"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*model.StockAlert, error)
	// FindByProduct returns every configured rule for the product; the
	// evaluator narrows by warehouse itself.
	FindByProduct(ctx context.Context, productID string, activeOnly bool) ([]model.StockAlert, error)
	List(ctx context.Context, f *dto.AlertFilters) ([]model.StockAlert, int, error)
	Create(ctx context.Context, a *model.StockAlert) error
	Update(ctx context.Context, a *model.StockAlert) error
}
