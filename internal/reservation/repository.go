package reservation

import (
	"context"
	"time"

	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/reservation/dto"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*model.StockReservation, error)
	List(ctx context.Context, f *dto.ReservationFilters) ([]model.StockReservation, int, error)
	Create(ctx context.Context, r *model.StockReservation) error

	// CompareAndSetStatus moves the reservation out of RESERVED into the
	// given terminal status, returning false when it was no longer
	// RESERVED. This is the single point that settles the race between
	// the reaper and an explicit cancel.
	CompareAndSetStatus(ctx context.Context, id string, to model.ReservationStatus, at time.Time) (bool, error)

	// ExtendIfReserved pushes expires_at forward while the reservation
	// is still RESERVED.
	ExtendIfReserved(ctx context.Context, id string, expiresAt, at time.Time) (bool, error)

	// FindExpired returns RESERVED rows whose expires_at has passed.
	FindExpired(ctx context.Context, before time.Time, limit int) ([]model.StockReservation, error)

	// SumReservedQuantity folds the open holds for one inventory key;
	// reconciliation checks it against ProductInventory.reserved_quantity.
	SumReservedQuantity(ctx context.Context, productID, warehouseID string) (int, error)
}
