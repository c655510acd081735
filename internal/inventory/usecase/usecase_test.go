package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockward/inventory-service/config"
	"github.com/stockward/inventory-service/internal/apperr"
	"github.com/stockward/inventory-service/internal/inventory"
	"github.com/stockward/inventory-service/internal/inventory/dto"
	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/pkg/clock"
	"github.com/stockward/inventory-service/internal/pkg/lock"
	warehousedto "github.com/stockward/inventory-service/internal/warehouse/dto"
)

type fakeInventoryRepo struct {
	rows      map[string]*model.ProductInventory
	updateErr error
	createErr error
}

func invKey(productID, warehouseID string) string { return productID + "|" + warehouseID }

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{rows: map[string]*model.ProductInventory{}}
}

func (f *fakeInventoryRepo) seed(inv *model.ProductInventory) {
	cp := *inv
	f.rows[invKey(inv.ProductID, inv.WarehouseID)] = &cp
}

func (f *fakeInventoryRepo) GetByProductAndWarehouse(_ context.Context, productID, warehouseID string) (*model.ProductInventory, error) {
	if inv, ok := f.rows[invKey(productID, warehouseID)]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeInventoryRepo) LevelsByProduct(_ context.Context, productID string) ([]model.StockLevel, error) {
	var out []model.StockLevel
	for _, inv := range f.rows {
		if inv.ProductID != productID {
			continue
		}
		out = append(out, model.StockLevel{
			WarehouseID:       inv.WarehouseID,
			Quantity:          inv.Quantity,
			ReservedQuantity:  inv.ReservedQuantity,
			AvailableQuantity: inv.AvailableQuantity(),
			UnitCost:          inv.UnitCost,
		})
	}
	return out, nil
}

func (f *fakeInventoryRepo) FindReorderNeeded(_ context.Context, filters *dto.ReorderFilters) ([]model.ProductInventory, int, error) {
	var out []model.ProductInventory
	for _, inv := range f.rows {
		if inv.ReorderPoint <= 0 || inv.Quantity > inv.ReorderPoint {
			continue
		}
		if filters.WarehouseID != nil && inv.WarehouseID != *filters.WarehouseID {
			continue
		}
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (f *fakeInventoryRepo) Create(_ context.Context, inv *model.ProductInventory) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seed(inv)
	return nil
}

func (f *fakeInventoryRepo) Update(_ context.Context, inv *model.ProductInventory) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.seed(inv)
	return nil
}

func (f *fakeInventoryRepo) get(productID, warehouseID string) *model.ProductInventory {
	return f.rows[invKey(productID, warehouseID)]
}

// fakeWarehouses implements the full warehouse usecase surface over an
// in-memory map, with the same occupancy bounds as the real one.
type fakeWarehouses struct {
	warehouses   map[string]*model.Warehouse
	occupancyErr map[string]error
}

func newFakeWarehouses(ws ...*model.Warehouse) *fakeWarehouses {
	f := &fakeWarehouses{
		warehouses:   map[string]*model.Warehouse{},
		occupancyErr: map[string]error{},
	}
	for _, w := range ws {
		cp := *w
		f.warehouses[w.ID] = &cp
	}
	return f
}

func (f *fakeWarehouses) HasCapacity(_ context.Context, warehouseID string, qty int) (bool, error) {
	w, ok := f.warehouses[warehouseID]
	if !ok {
		return false, apperr.NotFound("warehouse %s not found", warehouseID)
	}
	return w.FreeCapacity() >= qty, nil
}

func (f *fakeWarehouses) UpdateOccupancy(_ context.Context, warehouseID string, delta int) (*model.Warehouse, error) {
	if err := f.occupancyErr[warehouseID]; err != nil {
		return nil, err
	}
	w, ok := f.warehouses[warehouseID]
	if !ok {
		return nil, apperr.NotFound("warehouse %s not found", warehouseID)
	}
	next := w.CurrentOccupancy + delta
	if next < 0 || next > w.Capacity {
		return nil, apperr.Invariant("occupancy bounds violated for %s", warehouseID)
	}
	w.CurrentOccupancy = next
	cp := *w
	return &cp, nil
}

func (f *fakeWarehouses) Create(context.Context, *warehousedto.CreateWarehouseInput) (*model.Warehouse, error) {
	panic("not used")
}

func (f *fakeWarehouses) Update(context.Context, string, *warehousedto.UpdateWarehouseInput) (*model.Warehouse, error) {
	panic("not used")
}

func (f *fakeWarehouses) Deactivate(context.Context, string) (*model.Warehouse, error) {
	panic("not used")
}

func (f *fakeWarehouses) GetByID(_ context.Context, id string) (*model.Warehouse, error) {
	w, ok := f.warehouses[id]
	if !ok {
		return nil, apperr.NotFound("warehouse %s not found", id)
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWarehouses) List(context.Context, bool) ([]model.Warehouse, error) {
	panic("not used")
}

func (f *fakeWarehouses) occupancy(id string) int {
	return f.warehouses[id].CurrentOccupancy
}

type fakeRecorder struct {
	entries   []model.StockMovement
	recordErr error
}

func (f *fakeRecorder) Record(_ context.Context, entry *model.StockMovement) (*model.StockMovement, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	f.entries = append(f.entries, *entry)
	return entry, nil
}

func (f *fakeRecorder) ofType(t model.MovementType) []model.StockMovement {
	var out []model.StockMovement
	for _, e := range f.entries {
		if e.MovementType == t {
			out = append(out, e)
		}
	}
	return out
}

type fakeEvaluator struct {
	evaluated []model.ProductInventory
}

func (f *fakeEvaluator) Evaluate(_ context.Context, inv *model.ProductInventory) {
	f.evaluated = append(f.evaluated, *inv)
}

type fixture struct {
	uc         inventory.UseCase
	repo       *fakeInventoryRepo
	warehouses *fakeWarehouses
	recorder   *fakeRecorder
	alerts     *fakeEvaluator
	clock      *clock.Fake
}

func newFixture(ws ...*model.Warehouse) *fixture {
	if len(ws) == 0 {
		ws = []*model.Warehouse{
			{ID: "w1", Code: "WH-A", Capacity: 1000, IsActive: true},
			{ID: "w2", Code: "WH-B", Capacity: 1000, IsActive: true},
		}
	}
	f := &fixture{
		repo:       newFakeInventoryRepo(),
		warehouses: newFakeWarehouses(ws...),
		recorder:   &fakeRecorder{},
		alerts:     &fakeEvaluator{},
		clock:      clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	lockCfg := config.LockingConfig{TTL: time.Second, MaxRetries: 3, RetryDelay: time.Millisecond}
	f.uc = NewInventoryUseCase(f.repo, f.warehouses, f.recorder, f.alerts, lock.NewKeyMutex(), lockCfg, f.clock, zap.NewNop())
	return f
}

func (f *fixture) seedStock(productID, warehouseID string, qty, reserved int, cost string) {
	c, _ := decimal.NewFromString(cost)
	f.repo.seed(&model.ProductInventory{
		ID: "inv-" + productID + "-" + warehouseID, ProductID: productID, WarehouseID: warehouseID,
		Quantity: qty, ReservedQuantity: reserved, UnitCost: c,
	})
	f.warehouses.warehouses[warehouseID].CurrentOccupancy += qty
}

func TestReceiveCreatesRow(t *testing.T) {
	f := newFixture()

	inv, err := f.uc.Receive(context.Background(), &dto.ReceiveInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 40,
		UnitCost: decimal.NewFromInt(5), ReorderPoint: 10, PerformedBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 40, inv.Quantity)
	assert.Equal(t, 40, f.warehouses.occupancy("w1"))

	entries := f.recorder.ofType(model.MovementInbound)
	require.Len(t, entries, 1)
	assert.Equal(t, 40, entries[0].Quantity)
	require.NotNil(t, entries[0].ToWarehouseID)
	assert.Equal(t, "w1", *entries[0].ToWarehouseID)
	assert.Nil(t, entries[0].FromWarehouseID)
	assert.Len(t, f.alerts.evaluated, 1)
}

func TestReceiveBlendsUnitCost(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 10, 0, "10")

	// 10 units @ 10 plus 30 units @ 20 averages to 17.50.
	inv, err := f.uc.Receive(context.Background(), &dto.ReceiveInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 30,
		UnitCost: decimal.NewFromInt(20), PerformedBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 40, inv.Quantity)
	assert.True(t, inv.UnitCost.Equal(decimal.RequireFromString("17.5")),
		"expected 17.5, got %s", inv.UnitCost)
}

func TestReceiveRejectsOverCapacity(t *testing.T) {
	f := newFixture(&model.Warehouse{ID: "w1", Code: "WH-A", Capacity: 50, IsActive: true})
	f.seedStock("p1", "w1", 30, 0, "1")

	_, err := f.uc.Receive(context.Background(), &dto.ReceiveInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 21,
		UnitCost: decimal.NewFromInt(1), PerformedBy: "alice",
	})
	assert.True(t, apperr.Is(err, apperr.KindInvariant))
	assert.Equal(t, 30, f.repo.get("p1", "w1").Quantity)
}

func TestReceiveRejectsInactiveWarehouse(t *testing.T) {
	f := newFixture(&model.Warehouse{ID: "w1", Code: "WH-A", Capacity: 50, IsActive: false})

	_, err := f.uc.Receive(context.Background(), &dto.ReceiveInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 5,
		UnitCost: decimal.NewFromInt(1), PerformedBy: "alice",
	})
	assert.True(t, apperr.Is(err, apperr.KindInvariant))
}

func TestAdjustIncreaseAndDecrease(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 50, 0, "2")
	ctx := context.Background()

	inv, err := f.uc.Adjust(ctx, &dto.AdjustInput{
		ProductID: "p1", WarehouseID: "w1", Type: dto.AdjustIncrease, Quantity: 10,
		Reason: "cycle count", PerformedBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 60, inv.Quantity)
	assert.Equal(t, 60, f.warehouses.occupancy("w1"))

	inv, err = f.uc.Adjust(ctx, &dto.AdjustInput{
		ProductID: "p1", WarehouseID: "w1", Type: dto.AdjustDecrease, Quantity: 15,
		Reason: "damage", PerformedBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 45, inv.Quantity)
	assert.Equal(t, 45, f.warehouses.occupancy("w1"))

	entries := f.recorder.ofType(model.MovementAdjustment)
	require.Len(t, entries, 2)
	assert.NotNil(t, entries[0].ToWarehouseID)
	assert.NotNil(t, entries[1].FromWarehouseID)
}

func TestAdjustDecreaseBeyondAvailable(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 50, 20, "2")

	// 30 available; reserved stock is untouchable.
	_, err := f.uc.Adjust(context.Background(), &dto.AdjustInput{
		ProductID: "p1", WarehouseID: "w1", Type: dto.AdjustDecrease, Quantity: 31,
		Reason: "shrinkage", PerformedBy: "alice",
	})
	assert.True(t, apperr.Is(err, apperr.KindInvariant))
	assert.Equal(t, 50, f.repo.get("p1", "w1").Quantity)
}

func TestAdjustSetBelowReserved(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 50, 20, "2")

	_, err := f.uc.Adjust(context.Background(), &dto.AdjustInput{
		ProductID: "p1", WarehouseID: "w1", Type: dto.AdjustSet, Quantity: 19,
		Reason: "recount", PerformedBy: "alice",
	})
	assert.True(t, apperr.Is(err, apperr.KindInvariant))

	inv, err := f.uc.Adjust(context.Background(), &dto.AdjustInput{
		ProductID: "p1", WarehouseID: "w1", Type: dto.AdjustSet, Quantity: 20,
		Reason: "recount", PerformedBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, inv.Quantity)
	assert.Equal(t, 0, inv.AvailableQuantity())
}

func TestAdjustSetToZeroEmptiesRow(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 50, 0, "2")

	inv, err := f.uc.Adjust(context.Background(), &dto.AdjustInput{
		ProductID: "p1", WarehouseID: "w1", Type: dto.AdjustSet, Quantity: 0,
		Reason: "write-off", PerformedBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Quantity)
	assert.Equal(t, 0, f.warehouses.occupancy("w1"))

	// The row survives at zero quantity.
	require.NotNil(t, f.repo.get("p1", "w1"))
	entries := f.recorder.ofType(model.MovementAdjustment)
	require.Len(t, entries, 1)
	assert.Equal(t, 50, entries[0].Quantity)
}

func TestAdjustSetNoChangeIsNoOp(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 50, 0, "2")

	_, err := f.uc.Adjust(context.Background(), &dto.AdjustInput{
		ProductID: "p1", WarehouseID: "w1", Type: dto.AdjustSet, Quantity: 50,
		Reason: "recount", PerformedBy: "alice",
	})
	require.NoError(t, err)
	assert.Empty(t, f.recorder.entries)
}

func TestAdjustUnknownType(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Adjust(context.Background(), &dto.AdjustInput{
		ProductID: "p1", WarehouseID: "w1", Type: "sideways", Quantity: 1,
		Reason: "?", PerformedBy: "alice",
	})
	assert.True(t, apperr.Is(err, apperr.KindConfig))
}

func TestTransferMovesStockAndOccupancy(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 100, 0, "3")

	err := f.uc.Transfer(context.Background(), &dto.TransferInput{
		ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w2", Quantity: 40, PerformedBy: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, 60, f.repo.get("p1", "w1").Quantity)
	dest := f.repo.get("p1", "w2")
	require.NotNil(t, dest)
	assert.Equal(t, 40, dest.Quantity)
	assert.True(t, dest.UnitCost.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 60, f.warehouses.occupancy("w1"))
	assert.Equal(t, 40, f.warehouses.occupancy("w2"))

	// Exactly one TRANSFER entry covering both legs.
	require.Len(t, f.recorder.entries, 1)
	entry := f.recorder.entries[0]
	assert.Equal(t, model.MovementTransfer, entry.MovementType)
	assert.Equal(t, "w1", *entry.FromWarehouseID)
	assert.Equal(t, "w2", *entry.ToWarehouseID)
	assert.Equal(t, 40, entry.Quantity)
}

func TestTransferValidationFailuresLeaveNoTrace(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 10, 4, "3")
	ctx := context.Background()

	cases := []dto.TransferInput{
		{ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w1", Quantity: 1},
		{ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w2", Quantity: 0},
		{ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w2", Quantity: 7}, // only 6 available
	}
	for _, input := range cases {
		input.PerformedBy = "alice"
		err := f.uc.Transfer(ctx, &input)
		assert.True(t, apperr.Is(err, apperr.KindInvariant))
	}

	assert.Equal(t, 10, f.repo.get("p1", "w1").Quantity)
	assert.Nil(t, f.repo.get("p1", "w2"))
	assert.Equal(t, 10, f.warehouses.occupancy("w1"))
	assert.Empty(t, f.recorder.entries)
}

func TestTransferCompensatesWhenLedgerFails(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 100, 0, "3")
	f.recorder.recordErr = errors.New("ledger down")

	err := f.uc.Transfer(context.Background(), &dto.TransferInput{
		ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w2", Quantity: 40, PerformedBy: "alice",
	})
	require.Error(t, err)

	// Both halves rolled back: no partial transfer is observable.
	assert.Equal(t, 100, f.repo.get("p1", "w1").Quantity)
	assert.Equal(t, 0, f.repo.get("p1", "w2").Quantity)
	assert.Equal(t, 100, f.warehouses.occupancy("w1"))
	assert.Equal(t, 0, f.warehouses.occupancy("w2"))
}

func TestTransferCompensatesWhenDestinationOccupancyFails(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 100, 0, "3")
	f.warehouses.occupancyErr["w2"] = apperr.Internal("warehouse store down", nil)

	err := f.uc.Transfer(context.Background(), &dto.TransferInput{
		ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w2", Quantity: 40, PerformedBy: "alice",
	})
	require.Error(t, err)
	assert.Equal(t, 100, f.repo.get("p1", "w1").Quantity)
	assert.Equal(t, 100, f.warehouses.occupancy("w1"))
	assert.Empty(t, f.recorder.entries)
}

func TestReserveReleaseKeepsInvariant(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 100, 0, "3")
	ctx := context.Background()

	inv, err := f.uc.ReserveStock(ctx, "p1", "w1", 30, "res-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 100, inv.Quantity)
	assert.Equal(t, 30, inv.ReservedQuantity)
	assert.Equal(t, 70, inv.AvailableQuantity())
	// Reserved stock still occupies the warehouse.
	assert.Equal(t, 100, f.warehouses.occupancy("w1"))

	inv, err = f.uc.ReleaseStock(ctx, "p1", "w1", 30, "res-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 100, inv.Quantity)
	assert.Equal(t, 0, inv.ReservedQuantity)

	require.Len(t, f.recorder.ofType(model.MovementReservation), 1)
	require.Len(t, f.recorder.ofType(model.MovementCancellation), 1)
}

func TestReserveBeyondAvailable(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 100, 80, "3")

	_, err := f.uc.ReserveStock(context.Background(), "p1", "w1", 21, "res-1", "alice")
	assert.True(t, apperr.Is(err, apperr.KindInvariant))
}

func TestReleaseBeyondReserved(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 100, 10, "3")

	_, err := f.uc.ReleaseStock(context.Background(), "p1", "w1", 11, "res-1", "alice")
	assert.True(t, apperr.Is(err, apperr.KindInvariant))
}

func TestConsumeReservedShipsStock(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 100, 30, "3")

	resID := "res-1"
	inv, err := f.uc.ConsumeReserved(context.Background(), "p1", "w1", 30, &resID, nil, "alice")
	require.NoError(t, err)
	assert.Equal(t, 70, inv.Quantity)
	assert.Equal(t, 0, inv.ReservedQuantity)
	assert.Equal(t, 70, f.warehouses.occupancy("w1"))

	entries := f.recorder.ofType(model.MovementOutbound)
	require.Len(t, entries, 1)
	assert.Equal(t, "reservation", *entries[0].ReferenceType)
	assert.Equal(t, resID, *entries[0].ReferenceID)
}

func TestConsumeReservedPrefersOrderReference(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 100, 30, "3")

	resID, orderID := "res-1", "ord-7"
	_, err := f.uc.ConsumeReserved(context.Background(), "p1", "w1", 30, &resID, &orderID, "alice")
	require.NoError(t, err)

	entries := f.recorder.ofType(model.MovementOutbound)
	require.Len(t, entries, 1)
	assert.Equal(t, "order", *entries[0].ReferenceType)
	assert.Equal(t, orderID, *entries[0].ReferenceID)
}

func TestDeductSale(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 50, 10, "3")

	inv, err := f.uc.DeductSale(context.Background(), "p1", "w1", 40, "ord-1", "system")
	require.NoError(t, err)
	assert.Equal(t, 10, inv.Quantity)
	assert.Equal(t, 10, f.warehouses.occupancy("w1"))

	_, err = f.uc.DeductSale(context.Background(), "p1", "w1", 1, "ord-2", "system")
	assert.True(t, apperr.Is(err, apperr.KindInvariant), "all remaining stock is reserved")
}

func TestReceiveReturn(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 50, 0, "3")

	inv, err := f.uc.ReceiveReturn(context.Background(), &dto.ReturnInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 5, OrderID: "ord-1", PerformedBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 55, inv.Quantity)
	assert.Equal(t, 55, f.warehouses.occupancy("w1"))

	entries := f.recorder.ofType(model.MovementReturn)
	require.Len(t, entries, 1)
	assert.Equal(t, "ord-1", *entries[0].ReferenceID)
}

func TestReceiveReturnUnknownInventory(t *testing.T) {
	f := newFixture()

	_, err := f.uc.ReceiveReturn(context.Background(), &dto.ReturnInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 5, OrderID: "ord-1", PerformedBy: "alice",
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGetStockLevels(t *testing.T) {
	f := newFixture()
	f.seedStock("p1", "w1", 50, 10, "3")
	f.seedStock("p1", "w2", 30, 5, "4")

	summary, err := f.uc.GetStockLevels(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 80, summary.TotalQuantity)
	assert.Equal(t, 15, summary.TotalReserved)
	assert.Equal(t, 65, summary.TotalAvailable)
	assert.Len(t, summary.Levels, 2)
}

func TestCheckReorderRequirements(t *testing.T) {
	f := newFixture()
	f.repo.seed(&model.ProductInventory{ID: "i1", ProductID: "p1", WarehouseID: "w1", Quantity: 5, ReorderPoint: 10})
	f.repo.seed(&model.ProductInventory{ID: "i2", ProductID: "p2", WarehouseID: "w1", Quantity: 50, ReorderPoint: 10})
	f.repo.seed(&model.ProductInventory{ID: "i3", ProductID: "p3", WarehouseID: "w1", Quantity: 0, ReorderPoint: 0})

	items, count, err := f.uc.CheckReorderRequirements(context.Background(), &dto.ReorderFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
}

// The invariant available = quantity - reserved must hold after any
// sequence of engine operations.
func TestInvariantAcrossOperationSequence(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Receive(ctx, &dto.ReceiveInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 100,
		UnitCost: decimal.NewFromInt(2), PerformedBy: "alice",
	})
	require.NoError(t, err)

	_, err = f.uc.ReserveStock(ctx, "p1", "w1", 40, "res-1", "alice")
	require.NoError(t, err)
	_, err = f.uc.Adjust(ctx, &dto.AdjustInput{
		ProductID: "p1", WarehouseID: "w1", Type: dto.AdjustIncrease, Quantity: 10,
		Reason: "found stock", PerformedBy: "alice",
	})
	require.NoError(t, err)
	_, err = f.uc.ReleaseStock(ctx, "p1", "w1", 15, "res-1", "alice")
	require.NoError(t, err)
	resID := "res-1"
	_, err = f.uc.ConsumeReserved(ctx, "p1", "w1", 25, &resID, nil, "alice")
	require.NoError(t, err)

	inv := f.repo.get("p1", "w1")
	assert.Equal(t, 85, inv.Quantity)
	assert.Equal(t, 0, inv.ReservedQuantity)
	assert.Equal(t, inv.Quantity-inv.ReservedQuantity, inv.AvailableQuantity())
	assert.Equal(t, 85, f.warehouses.occupancy("w1"))
}
