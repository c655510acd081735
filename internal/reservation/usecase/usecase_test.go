package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockward/inventory-service/config"
	"github.com/stockward/inventory-service/internal/apperr"
	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/pkg/clock"
	"github.com/stockward/inventory-service/internal/reservation"
	"github.com/stockward/inventory-service/internal/reservation/dto"
)

// fakeReservationRepo mirrors the compare-and-set semantics of the
// postgres repository: status moves out of RESERVED exactly once.
type fakeReservationRepo struct {
	rows      map[string]*model.StockReservation
	createErr error
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{rows: map[string]*model.StockReservation{}}
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id string) (*model.StockReservation, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservationRepo) List(_ context.Context, filters *dto.ReservationFilters) ([]model.StockReservation, int, error) {
	var out []model.StockReservation
	for _, r := range f.rows {
		if filters.Status != "" && string(r.Status) != filters.Status {
			continue
		}
		if filters.ProductID != "" && r.ProductID != filters.ProductID {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeReservationRepo) Create(_ context.Context, r *model.StockReservation) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *r
	f.rows[r.ID] = &cp
	return nil
}

func (f *fakeReservationRepo) CompareAndSetStatus(_ context.Context, id string, to model.ReservationStatus, at time.Time) (bool, error) {
	r, ok := f.rows[id]
	if !ok || r.Status != model.ReservationReserved {
		return false, nil
	}
	r.Status = to
	r.UpdatedAt = at
	return true, nil
}

func (f *fakeReservationRepo) ExtendIfReserved(_ context.Context, id string, expiresAt, at time.Time) (bool, error) {
	r, ok := f.rows[id]
	if !ok || r.Status != model.ReservationReserved {
		return false, nil
	}
	r.ExpiresAt = expiresAt
	r.UpdatedAt = at
	return true, nil
}

func (f *fakeReservationRepo) FindExpired(_ context.Context, before time.Time, limit int) ([]model.StockReservation, error) {
	var out []model.StockReservation
	for _, r := range f.rows {
		if r.Status == model.ReservationReserved && r.ExpiresAt.Before(before) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReservationRepo) SumReservedQuantity(_ context.Context, productID, warehouseID string) (int, error) {
	total := 0
	for _, r := range f.rows {
		if r.Status == model.ReservationReserved && r.ProductID == productID && r.WarehouseID == warehouseID {
			total += r.Quantity
		}
	}
	return total, nil
}

// fakeStockHolder tracks reserved counts per inventory key the way the
// quantity engine would, without the ledger and lock machinery.
type fakeStockHolder struct {
	available  map[string]int
	reserved   map[string]int
	reserveErr error
	releaseErr error
	releases   int
	consumes   int
}

func holderKey(productID, warehouseID string) string { return productID + "|" + warehouseID }

func newFakeStockHolder() *fakeStockHolder {
	return &fakeStockHolder{available: map[string]int{}, reserved: map[string]int{}}
}

func (f *fakeStockHolder) inv(productID, warehouseID string) *model.ProductInventory {
	k := holderKey(productID, warehouseID)
	return &model.ProductInventory{
		ProductID: productID, WarehouseID: warehouseID,
		Quantity:         f.available[k] + f.reserved[k],
		ReservedQuantity: f.reserved[k],
	}
}

func (f *fakeStockHolder) ReserveStock(_ context.Context, productID, warehouseID string, qty int, _, _ string) (*model.ProductInventory, error) {
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	k := holderKey(productID, warehouseID)
	if qty > f.available[k] {
		return nil, apperr.Invariant("insufficient available stock")
	}
	f.available[k] -= qty
	f.reserved[k] += qty
	return f.inv(productID, warehouseID), nil
}

func (f *fakeStockHolder) ReleaseStock(_ context.Context, productID, warehouseID string, qty int, _, _ string) (*model.ProductInventory, error) {
	if f.releaseErr != nil {
		return nil, f.releaseErr
	}
	k := holderKey(productID, warehouseID)
	if qty > f.reserved[k] {
		return nil, apperr.Invariant("release exceeds reserved")
	}
	f.reserved[k] -= qty
	f.available[k] += qty
	f.releases++
	return f.inv(productID, warehouseID), nil
}

func (f *fakeStockHolder) ConsumeReserved(_ context.Context, productID, warehouseID string, qty int, _, _ *string, _ string) (*model.ProductInventory, error) {
	k := holderKey(productID, warehouseID)
	if qty > f.reserved[k] {
		return nil, apperr.Invariant("consume exceeds reserved")
	}
	f.reserved[k] -= qty
	f.consumes++
	return f.inv(productID, warehouseID), nil
}

type resFixture struct {
	uc    reservation.UseCase
	repo  *fakeReservationRepo
	stock *fakeStockHolder
	clock *clock.Fake
}

func newResFixture() *resFixture {
	f := &resFixture{
		repo:  newFakeReservationRepo(),
		stock: newFakeStockHolder(),
		clock: clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.stock.available[holderKey("p1", "w1")] = 100
	cfg := config.ReservationConfig{DefaultExpiryHours: 24, MaxExpiryHours: 168, ReaperInterval: time.Minute}
	f.uc = NewReservationUseCase(f.repo, f.stock, cfg, f.clock, zap.NewNop())
	return f
}

func (f *resFixture) create(t *testing.T, qty, expiryHours int) *model.StockReservation {
	t.Helper()
	r, err := f.uc.Create(context.Background(), &dto.CreateReservationInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: qty, ExpiryHours: expiryHours, PerformedBy: "alice",
	})
	require.NoError(t, err)
	return r
}

func TestCreateReservationDefaultsExpiry(t *testing.T) {
	f := newResFixture()

	r := f.create(t, 30, 0)
	assert.Equal(t, model.ReservationReserved, r.Status)
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), r.ExpiresAt)
	assert.Equal(t, 30, f.stock.reserved[holderKey("p1", "w1")])
	assert.Equal(t, 70, f.stock.available[holderKey("p1", "w1")])
}

func TestCreateReservationExpiryBounds(t *testing.T) {
	f := newResFixture()
	ctx := context.Background()

	_, err := f.uc.Create(ctx, &dto.CreateReservationInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 10, ExpiryHours: 169, PerformedBy: "alice",
	})
	assert.True(t, apperr.Is(err, apperr.KindConfig))

	r, err := f.uc.Create(ctx, &dto.CreateReservationInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 10, ExpiryHours: 168, PerformedBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(168*time.Hour), r.ExpiresAt)
}

func TestCreateReservationInsufficientStock(t *testing.T) {
	f := newResFixture()

	_, err := f.uc.Create(context.Background(), &dto.CreateReservationInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 101, PerformedBy: "alice",
	})
	assert.True(t, apperr.Is(err, apperr.KindInvariant))
	assert.Empty(t, f.repo.rows)
}

func TestCreateReservationReleasesHoldWhenStoreFails(t *testing.T) {
	f := newResFixture()
	f.repo.createErr = errors.New("db down")

	_, err := f.uc.Create(context.Background(), &dto.CreateReservationInput{
		ProductID: "p1", WarehouseID: "w1", Quantity: 30, PerformedBy: "alice",
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.stock.reserved[holderKey("p1", "w1")])
	assert.Equal(t, 100, f.stock.available[holderKey("p1", "w1")])
}

func TestCancelReleasesStockOnce(t *testing.T) {
	f := newResFixture()
	r := f.create(t, 30, 0)
	ctx := context.Background()

	cancelled, err := f.uc.Cancel(ctx, r.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationAvailable, cancelled.Status)
	assert.Equal(t, 100, f.stock.available[holderKey("p1", "w1")])
	assert.Equal(t, 1, f.stock.releases)

	// A second cancel loses the compare-and-set and must not release again.
	_, err = f.uc.Cancel(ctx, r.ID, "alice")
	assert.True(t, apperr.Is(err, apperr.KindStateTransition))
	assert.Equal(t, 1, f.stock.releases)
}

func TestCancelStockFailureIsTerminal(t *testing.T) {
	f := newResFixture()
	r := f.create(t, 30, 0)
	ctx := context.Background()

	// The status commits before the release; a stock failure here leaves
	// the reservation terminal with the hold stranded for manual cleanup.
	f.stock.releaseErr = errors.New("inventory store down")
	_, err := f.uc.Cancel(ctx, r.ID, "alice")
	require.Error(t, err)

	stored, err := f.repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationAvailable, stored.Status)
	assert.Equal(t, 30, f.stock.reserved[holderKey("p1", "w1")])

	// A retry loses the compare-and-set; recovery is manual, not retried.
	f.stock.releaseErr = nil
	_, err = f.uc.Cancel(ctx, r.ID, "alice")
	assert.True(t, apperr.Is(err, apperr.KindStateTransition))
	assert.Equal(t, 30, f.stock.reserved[holderKey("p1", "w1")])
}

func TestConfirmConsumesStock(t *testing.T) {
	f := newResFixture()
	r := f.create(t, 30, 0)

	confirmed, err := f.uc.Confirm(context.Background(), r.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationSold, confirmed.Status)
	assert.Equal(t, 0, f.stock.reserved[holderKey("p1", "w1")])
	assert.Equal(t, 70, f.stock.available[holderKey("p1", "w1")])
	assert.Equal(t, 1, f.stock.consumes)

	_, err = f.uc.Cancel(context.Background(), r.ID, "alice")
	assert.True(t, apperr.Is(err, apperr.KindStateTransition), "sold is terminal")
}

func TestConfirmRejectsExpired(t *testing.T) {
	f := newResFixture()
	r := f.create(t, 30, 2)
	f.clock.Advance(3 * time.Hour)

	_, err := f.uc.Confirm(context.Background(), r.ID, "alice")
	assert.True(t, apperr.Is(err, apperr.KindStateTransition))
	// The hold stays in place for the reaper to release.
	assert.Equal(t, 30, f.stock.reserved[holderKey("p1", "w1")])
}

func TestExtendPushesExpiry(t *testing.T) {
	f := newResFixture()
	r := f.create(t, 30, 24)

	extended, err := f.uc.Extend(context.Background(), r.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, r.ExpiresAt.Add(12*time.Hour), extended.ExpiresAt)
}

func TestExtendRules(t *testing.T) {
	f := newResFixture()
	ctx := context.Background()

	t.Run("non-positive hours", func(t *testing.T) {
		r := f.create(t, 5, 24)
		_, err := f.uc.Extend(ctx, r.ID, 0)
		assert.True(t, apperr.Is(err, apperr.KindConfig))
	})

	t.Run("beyond maximum horizon", func(t *testing.T) {
		r := f.create(t, 5, 160)
		_, err := f.uc.Extend(ctx, r.ID, 20)
		assert.True(t, apperr.Is(err, apperr.KindConfig))
	})

	t.Run("already terminal", func(t *testing.T) {
		r := f.create(t, 5, 24)
		_, err := f.uc.Cancel(ctx, r.ID, "alice")
		require.NoError(t, err)
		_, err = f.uc.Extend(ctx, r.ID, 1)
		assert.True(t, apperr.Is(err, apperr.KindStateTransition))
	})

	t.Run("already expired", func(t *testing.T) {
		r := f.create(t, 5, 1)
		f.clock.Advance(2 * time.Hour)
		_, err := f.uc.Extend(ctx, r.ID, 1)
		assert.True(t, apperr.Is(err, apperr.KindStateTransition))
	})
}

func TestGetByIDUnknownReservation(t *testing.T) {
	f := newResFixture()
	_, err := f.uc.GetByID(context.Background(), "nope")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
