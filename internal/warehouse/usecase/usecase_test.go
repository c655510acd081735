package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockward/inventory-service/internal/apperr"
	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/pkg/clock"
	"github.com/stockward/inventory-service/internal/warehouse/dto"
)

type fakeWarehouseRepo struct {
	byID   map[string]*model.Warehouse
	byCode map[string]*model.Warehouse
}

func newFakeWarehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{
		byID:   map[string]*model.Warehouse{},
		byCode: map[string]*model.Warehouse{},
	}
}

func (f *fakeWarehouseRepo) add(w *model.Warehouse) {
	cp := *w
	f.byID[w.ID] = &cp
	f.byCode[w.Code] = &cp
}

func (f *fakeWarehouseRepo) GetByID(_ context.Context, id string) (*model.Warehouse, error) {
	if w, ok := f.byID[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeWarehouseRepo) GetByCode(_ context.Context, code string) (*model.Warehouse, error) {
	if w, ok := f.byCode[code]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeWarehouseRepo) List(_ context.Context, activeOnly bool) ([]model.Warehouse, error) {
	var out []model.Warehouse
	for _, w := range f.byID {
		if activeOnly && !w.IsActive {
			continue
		}
		out = append(out, *w)
	}
	return out, nil
}

func (f *fakeWarehouseRepo) Create(_ context.Context, w *model.Warehouse) error {
	f.add(w)
	return nil
}

func (f *fakeWarehouseRepo) Update(_ context.Context, w *model.Warehouse) error {
	f.add(w)
	return nil
}

func (f *fakeWarehouseRepo) ApplyOccupancyDelta(_ context.Context, id string, delta int) (*model.Warehouse, error) {
	w := f.byID[id]
	next := w.CurrentOccupancy + delta
	if next < 0 || next > w.Capacity {
		return nil, nil
	}
	w.CurrentOccupancy = next
	cp := *w
	return &cp, nil
}

func newWarehouseUC(repo *fakeWarehouseRepo) *warehouseUseCase {
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewWarehouseUseCase(repo, clk, zap.NewNop()).(*warehouseUseCase)
}

func TestCreateWarehouse(t *testing.T) {
	repo := newFakeWarehouseRepo()
	uc := newWarehouseUC(repo)

	w, err := uc.Create(context.Background(), &dto.CreateWarehouseInput{Code: "WH-A", Name: "Central", Capacity: 100})
	require.NoError(t, err)
	assert.True(t, w.IsActive)
	assert.Equal(t, 0, w.CurrentOccupancy)
	assert.Equal(t, 100, w.Capacity)
}

func TestCreateWarehouseDuplicateCode(t *testing.T) {
	repo := newFakeWarehouseRepo()
	uc := newWarehouseUC(repo)

	_, err := uc.Create(context.Background(), &dto.CreateWarehouseInput{Code: "WH-A", Name: "Central", Capacity: 100})
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), &dto.CreateWarehouseInput{Code: "WH-A", Name: "Other", Capacity: 50})
	assert.True(t, apperr.Is(err, apperr.KindInvariant))
}

func TestUpdateCapacityBelowOccupancy(t *testing.T) {
	repo := newFakeWarehouseRepo()
	repo.add(&model.Warehouse{ID: "w1", Code: "WH-A", Capacity: 100, CurrentOccupancy: 60, IsActive: true})
	uc := newWarehouseUC(repo)

	capacity := 50
	_, err := uc.Update(context.Background(), "w1", &dto.UpdateWarehouseInput{Capacity: &capacity})
	assert.True(t, apperr.Is(err, apperr.KindInvariant))

	capacity = 60
	w, err := uc.Update(context.Background(), "w1", &dto.UpdateWarehouseInput{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 60, w.Capacity)
}

func TestDeactivateNonEmptyWarehouse(t *testing.T) {
	repo := newFakeWarehouseRepo()
	repo.add(&model.Warehouse{ID: "w1", Code: "WH-A", Capacity: 100, CurrentOccupancy: 5, IsActive: true})
	uc := newWarehouseUC(repo)

	_, err := uc.Deactivate(context.Background(), "w1")
	assert.True(t, apperr.Is(err, apperr.KindStateTransition))
}

func TestDeactivateEmptyWarehouse(t *testing.T) {
	repo := newFakeWarehouseRepo()
	repo.add(&model.Warehouse{ID: "w1", Code: "WH-A", Capacity: 100, IsActive: true})
	uc := newWarehouseUC(repo)

	w, err := uc.Deactivate(context.Background(), "w1")
	require.NoError(t, err)
	assert.False(t, w.IsActive)
}

func TestHasCapacity(t *testing.T) {
	repo := newFakeWarehouseRepo()
	repo.add(&model.Warehouse{ID: "w1", Code: "WH-A", Capacity: 100, CurrentOccupancy: 90, IsActive: true})
	uc := newWarehouseUC(repo)

	ok, err := uc.HasCapacity(context.Background(), "w1", 10)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = uc.HasCapacity(context.Background(), "w1", 11)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateOccupancyBounds(t *testing.T) {
	repo := newFakeWarehouseRepo()
	repo.add(&model.Warehouse{ID: "w1", Code: "WH-A", Capacity: 100, CurrentOccupancy: 90, IsActive: true})
	uc := newWarehouseUC(repo)

	_, err := uc.UpdateOccupancy(context.Background(), "w1", 11)
	assert.True(t, apperr.Is(err, apperr.KindInvariant))

	_, err = uc.UpdateOccupancy(context.Background(), "w1", -91)
	assert.True(t, apperr.Is(err, apperr.KindInvariant))

	w, err := uc.UpdateOccupancy(context.Background(), "w1", 10)
	require.NoError(t, err)
	assert.Equal(t, 100, w.CurrentOccupancy)

	w, err = uc.UpdateOccupancy(context.Background(), "w1", -100)
	require.NoError(t, err)
	assert.Equal(t, 0, w.CurrentOccupancy)
}

func TestUpdateOccupancyUnknownWarehouse(t *testing.T) {
	repo := newFakeWarehouseRepo()
	uc := newWarehouseUC(repo)

	_, err := uc.UpdateOccupancy(context.Background(), "missing", 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
