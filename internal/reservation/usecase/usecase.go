package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockward/inventory-service/config"
	"github.com/stockward/inventory-service/internal/apperr"
	"github.com/stockward/inventory-service/internal/inventory"
	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/pkg/clock"
	"github.com/stockward/inventory-service/internal/reservation"
	"github.com/stockward/inventory-service/internal/reservation/dto"
	"go.uber.org/zap"
)

type reservationUseCase struct {
	repo   reservation.Repository
	stock  inventory.StockHolder
	cfg    config.ReservationConfig
	clock  clock.Clock
	logger *zap.Logger
}

func NewReservationUseCase(
	repo reservation.Repository,
	stock inventory.StockHolder,
	cfg config.ReservationConfig,
	clk clock.Clock,
	log *zap.Logger,
) reservation.UseCase {
	return &reservationUseCase{
		repo:   repo,
		stock:  stock,
		cfg:    cfg,
		clock:  clk,
		logger: log,
	}
}

func (uc *reservationUseCase) Create(ctx context.Context, input *dto.CreateReservationInput) (*model.StockReservation, error) {
	if input.Quantity <= 0 {
		return nil, apperr.Invariant("reservation quantity must be positive, got %d", input.Quantity)
	}

	hours := input.ExpiryHours
	if hours == 0 {
		hours = uc.cfg.DefaultExpiryHours
	}
	if hours < 0 {
		return nil, apperr.Config("expiry hours cannot be negative, got %d", hours)
	}
	if hours > uc.cfg.MaxExpiryHours {
		return nil, apperr.Config("expiry of %dh exceeds the configured maximum of %dh", hours, uc.cfg.MaxExpiryHours)
	}

	id := uuid.New().String()

	// Hold the stock first: the quantity engine owns the availability
	// check and the available = quantity - reserved invariant.
	if _, err := uc.stock.ReserveStock(ctx, input.ProductID, input.WarehouseID, input.Quantity, id, input.PerformedBy); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	r := &model.StockReservation{
		ID:          id,
		ProductID:   input.ProductID,
		WarehouseID: input.WarehouseID,
		Quantity:    input.Quantity,
		Status:      model.ReservationReserved,
		ExpiresAt:   now.Add(time.Duration(hours) * time.Hour),
		OrderID:     input.OrderID,
		CustomerID:  input.CustomerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, r); err != nil {
		// Give the hold back; an orphaned hold would understate
		// availability forever.
		if _, rbErr := uc.stock.ReleaseStock(ctx, input.ProductID, input.WarehouseID, input.Quantity, id, input.PerformedBy); rbErr != nil {
			uc.logger.Error("failed to release hold after reservation create failure, manual reconciliation required",
				zap.String("reservation_id", id), zap.Error(rbErr))
		}
		return nil, apperr.Internal("failed to store reservation", err)
	}

	uc.logger.Info("reservation created",
		zap.String("reservation_id", r.ID),
		zap.String("product_id", r.ProductID),
		zap.Int("quantity", r.Quantity),
		zap.Time("expires_at", r.ExpiresAt),
	)
	return r, nil
}

// Cancel releases a RESERVED hold back to the pool. The compare-and-set
// guarantees the release runs exactly once even when the reaper and an
// explicit cancel race on the same reservation. If the release fails
// after the status has committed, the reservation is already terminal:
// retrying returns InvalidStateTransition and the stranded hold needs
// manual reconciliation (see the error log).
func (uc *reservationUseCase) Cancel(ctx context.Context, id, performedBy string) (*model.StockReservation, error) {
	r, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	won, err := uc.repo.CompareAndSetStatus(ctx, id, model.ReservationAvailable, now)
	if err != nil {
		return nil, apperr.Internal("failed to cancel reservation", err)
	}
	if !won {
		return nil, apperr.StateTransition("reservation %s is already %s", id, r.Status)
	}

	if _, err := uc.stock.ReleaseStock(ctx, r.ProductID, r.WarehouseID, r.Quantity, r.ID, performedBy); err != nil {
		uc.logger.Error("reservation cancelled but hold not released, manual reconciliation required",
			zap.String("reservation_id", id), zap.Error(err))
		return nil, err
	}

	r.Status = model.ReservationAvailable
	r.UpdatedAt = now
	return r, nil
}

// Confirm moves a RESERVED hold to SOLD and ships the stock. As with
// Cancel, a stock failure after the status commit leaves the reservation
// SOLD with the hold still in place; recovery is manual.
func (uc *reservationUseCase) Confirm(ctx context.Context, id, performedBy string) (*model.StockReservation, error) {
	r, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	if r.IsExpired(now) {
		return nil, apperr.StateTransition("reservation %s expired at %s", id, r.ExpiresAt.Format(time.RFC3339))
	}

	won, err := uc.repo.CompareAndSetStatus(ctx, id, model.ReservationSold, now)
	if err != nil {
		return nil, apperr.Internal("failed to confirm reservation", err)
	}
	if !won {
		return nil, apperr.StateTransition("reservation %s is already %s", id, r.Status)
	}

	if _, err := uc.stock.ConsumeReserved(ctx, r.ProductID, r.WarehouseID, r.Quantity, &r.ID, r.OrderID, performedBy); err != nil {
		uc.logger.Error("reservation confirmed but stock not consumed, manual reconciliation required",
			zap.String("reservation_id", id), zap.Error(err))
		return nil, err
	}

	r.Status = model.ReservationSold
	r.UpdatedAt = now
	return r, nil
}

func (uc *reservationUseCase) Extend(ctx context.Context, id string, hours int) (*model.StockReservation, error) {
	if hours <= 0 {
		return nil, apperr.Config("extension hours must be positive, got %d", hours)
	}

	r, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	if r.Status != model.ReservationReserved {
		return nil, apperr.StateTransition("reservation %s is already %s", id, r.Status)
	}
	if r.IsExpired(now) {
		return nil, apperr.StateTransition("reservation %s expired at %s", id, r.ExpiresAt.Format(time.RFC3339))
	}

	newExpiry := r.ExpiresAt.Add(time.Duration(hours) * time.Hour)
	if newExpiry.Sub(now) > time.Duration(uc.cfg.MaxExpiryHours)*time.Hour {
		return nil, apperr.Config("extension would exceed the configured maximum of %dh", uc.cfg.MaxExpiryHours)
	}

	extended, err := uc.repo.ExtendIfReserved(ctx, id, newExpiry, now)
	if err != nil {
		return nil, apperr.Internal("failed to extend reservation", err)
	}
	if !extended {
		return nil, apperr.StateTransition("reservation %s left RESERVED during extension", id)
	}

	r.ExpiresAt = newExpiry
	r.UpdatedAt = now
	return r, nil
}

func (uc *reservationUseCase) GetByID(ctx context.Context, id string) (*model.StockReservation, error) {
	return uc.get(ctx, id)
}

func (uc *reservationUseCase) List(ctx context.Context, f *dto.ReservationFilters) ([]model.StockReservation, int, error) {
	return uc.repo.List(ctx, f)
}

func (uc *reservationUseCase) get(ctx context.Context, id string) (*model.StockReservation, error) {
	r, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to fetch reservation", err)
	}
	if r == nil {
		return nil, apperr.NotFound("reservation %s not found", id)
	}
	return r, nil
}
