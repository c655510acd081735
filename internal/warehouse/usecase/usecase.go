package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockward/inventory-service/internal/apperr"
	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/pkg/clock"
	"github.com/stockward/inventory-service/internal/warehouse"
	"github.com/stockward/inventory-service/internal/warehouse/dto"
	"go.uber.org/zap"
)

type warehouseUseCase struct {
	repo   warehouse.Repository
	clock  clock.Clock
	logger *zap.Logger
}

func NewWarehouseUseCase(repo warehouse.Repository, clk clock.Clock, log *zap.Logger) warehouse.UseCase {
	return &warehouseUseCase{
		repo:   repo,
		clock:  clk,
		logger: log,
	}
}

func (uc *warehouseUseCase) Create(ctx context.Context, input *dto.CreateWarehouseInput) (*model.Warehouse, error) {
	if input.Capacity < 0 {
		return nil, apperr.Invariant("warehouse capacity cannot be negative, got %d", input.Capacity)
	}

	existing, err := uc.repo.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, apperr.Internal("failed to check warehouse code", err)
	}
	if existing != nil {
		return nil, apperr.Invariant("warehouse code %q already in use", input.Code)
	}

	now := uc.clock.Now()
	w := &model.Warehouse{
		ID:               uuid.New().String(),
		Code:             input.Code,
		Name:             input.Name,
		Capacity:         input.Capacity,
		CurrentOccupancy: 0,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.repo.Create(ctx, w); err != nil {
		return nil, apperr.Internal("failed to create warehouse", err)
	}

	uc.logger.Info("warehouse created",
		zap.String("warehouse_id", w.ID),
		zap.String("code", w.Code),
		zap.Int("capacity", w.Capacity),
	)
	return w, nil
}

func (uc *warehouseUseCase) Update(ctx context.Context, id string, input *dto.UpdateWarehouseInput) (*model.Warehouse, error) {
	w, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		w.Name = *input.Name
	}
	if input.Capacity != nil {
		// Shrinking below current occupancy would break the capacity
		// invariant for stock already on the floor.
		if *input.Capacity < w.CurrentOccupancy {
			return nil, apperr.Invariant(
				"capacity %d is below current occupancy %d of warehouse %s",
				*input.Capacity, w.CurrentOccupancy, w.Code,
			)
		}
		w.Capacity = *input.Capacity
	}
	w.UpdatedAt = uc.clock.Now()

	if err := uc.repo.Update(ctx, w); err != nil {
		return nil, apperr.Internal("failed to update warehouse", err)
	}
	return w, nil
}

func (uc *warehouseUseCase) Deactivate(ctx context.Context, id string) (*model.Warehouse, error) {
	w, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.CurrentOccupancy > 0 {
		return nil, apperr.StateTransition(
			"warehouse %s is not empty: %d units still stored", w.Code, w.CurrentOccupancy)
	}

	w.IsActive = false
	w.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, w); err != nil {
		return nil, apperr.Internal("failed to deactivate warehouse", err)
	}

	uc.logger.Info("warehouse deactivated", zap.String("warehouse_id", w.ID), zap.String("code", w.Code))
	return w, nil
}

func (uc *warehouseUseCase) GetByID(ctx context.Context, id string) (*model.Warehouse, error) {
	return uc.get(ctx, id)
}

func (uc *warehouseUseCase) List(ctx context.Context, activeOnly bool) ([]model.Warehouse, error) {
	items, err := uc.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, apperr.Internal("failed to list warehouses", err)
	}
	return items, nil
}

func (uc *warehouseUseCase) HasCapacity(ctx context.Context, warehouseID string, qty int) (bool, error) {
	w, err := uc.get(ctx, warehouseID)
	if err != nil {
		return false, err
	}
	return w.FreeCapacity() >= qty, nil
}

func (uc *warehouseUseCase) UpdateOccupancy(ctx context.Context, warehouseID string, delta int) (*model.Warehouse, error) {
	w, err := uc.get(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	next := w.CurrentOccupancy + delta
	if next > w.Capacity {
		return nil, apperr.Invariant(
			"occupancy change %+d exceeds capacity of warehouse %s: %d/%d",
			delta, w.Code, w.CurrentOccupancy, w.Capacity,
		)
	}
	if next < 0 {
		return nil, apperr.Invariant(
			"occupancy change %+d would make warehouse %s occupancy negative (%d)",
			delta, w.Code, next,
		)
	}

	updated, err := uc.repo.ApplyOccupancyDelta(ctx, warehouseID, delta)
	if err != nil {
		return nil, apperr.Internal("failed to update warehouse occupancy", err)
	}
	if updated == nil {
		// The conditional update lost a race with a concurrent change.
		return nil, apperr.Invariant(
			"occupancy change %+d rejected for warehouse %s: capacity bounds", delta, w.Code)
	}
	return updated, nil
}

func (uc *warehouseUseCase) get(ctx context.Context, id string) (*model.Warehouse, error) {
	w, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to fetch warehouse", err)
	}
	if w == nil {
		return nil, apperr.NotFound("warehouse %s not found", id)
	}
	return w, nil
}
