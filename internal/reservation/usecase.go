package reservation

import (
	"context"

	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/reservation/dto"
)

// UseCase drives the reservation state machine:
// RESERVED -> SOLD (confirm), RESERVED -> AVAILABLE (cancel, expire).
// Terminal states never transition again.
type UseCase interface {
	Create(ctx context.Context, input *dto.CreateReservationInput) (*model.StockReservation, error)
	Cancel(ctx context.Context, id, performedBy string) (*model.StockReservation, error)
	Confirm(ctx context.Context, id, performedBy string) (*model.StockReservation, error)
	Extend(ctx context.Context, id string, hours int) (*model.StockReservation, error)
	GetByID(ctx context.Context, id string) (*model.StockReservation, error)
	List(ctx context.Context, f *dto.ReservationFilters) ([]model.StockReservation, int, error)
}
