package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockward/inventory-service/config"
	"github.com/stockward/inventory-service/internal/alert"
	"github.com/stockward/inventory-service/internal/apperr"
	"github.com/stockward/inventory-service/internal/inventory"
	"github.com/stockward/inventory-service/internal/inventory/dto"
	"github.com/stockward/inventory-service/internal/ledger"
	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/pkg/clock"
	"github.com/stockward/inventory-service/internal/pkg/lock"
	"github.com/stockward/inventory-service/internal/warehouse"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo       inventory.Repository
	warehouses warehouse.UseCase
	ledger     ledger.Recorder
	alerts     alert.Evaluator
	locker     lock.Locker
	lockCfg    config.LockingConfig
	clock      clock.Clock
	logger     *zap.Logger
}

func NewInventoryUseCase(
	repo inventory.Repository,
	warehouses warehouse.UseCase,
	ledgerRecorder ledger.Recorder,
	alerts alert.Evaluator,
	locker lock.Locker,
	lockCfg config.LockingConfig,
	clk clock.Clock,
	log *zap.Logger,
) inventory.UseCase {
	return &inventoryUseCase{
		repo:       repo,
		warehouses: warehouses,
		ledger:     ledgerRecorder,
		alerts:     alerts,
		locker:     locker,
		lockCfg:    lockCfg,
		clock:      clk,
		logger:     log,
	}
}

func lockKey(productID, warehouseID string) string {
	return fmt.Sprintf("lock:inventory:%s:%s", productID, warehouseID)
}

// acquire takes the per-key lock with a short retry loop. The returned
// release must be deferred by the caller.
func (uc *inventoryUseCase) acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	for i := 0; i < uc.lockCfg.MaxRetries; i++ {
		ok, err := uc.locker.Acquire(ctx, key, token, uc.lockCfg.TTL)
		if err != nil {
			uc.logger.Error("failed to acquire inventory lock", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return func() {
				if err := uc.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
					uc.logger.Warn("failed to release inventory lock", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}
		time.Sleep(uc.lockCfg.RetryDelay)
	}
	return nil, apperr.Internal("inventory row is busy, retry the operation", nil)
}

func (uc *inventoryUseCase) load(ctx context.Context, productID, warehouseID string) (*model.ProductInventory, error) {
	inv, err := uc.repo.GetByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return nil, apperr.Internal("failed to fetch inventory", err)
	}
	if inv == nil {
		return nil, apperr.NotFound("no inventory for product %s in warehouse %s", productID, warehouseID)
	}
	return inv, nil
}

// activeWarehouse fetches a warehouse and rejects inactive ones.
func (uc *inventoryUseCase) activeWarehouse(ctx context.Context, id string) (*model.Warehouse, error) {
	w, err := uc.warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.IsActive {
		return nil, apperr.Invariant("warehouse %s is not active", w.Code)
	}
	return w, nil
}

func (uc *inventoryUseCase) Receive(ctx context.Context, input *dto.ReceiveInput) (*model.ProductInventory, error) {
	if input.Quantity <= 0 {
		return nil, apperr.Invariant("receive quantity must be positive, got %d", input.Quantity)
	}
	if input.UnitCost.IsNegative() {
		return nil, apperr.Invariant("unit cost cannot be negative, got %s", input.UnitCost)
	}

	release, err := uc.acquire(ctx, lockKey(input.ProductID, input.WarehouseID))
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := uc.activeWarehouse(ctx, input.WarehouseID); err != nil {
		return nil, err
	}
	ok, err := uc.warehouses.HasCapacity(ctx, input.WarehouseID, input.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Invariant("warehouse %s lacks capacity for %d units", input.WarehouseID, input.Quantity)
	}

	inv, err := uc.repo.GetByProductAndWarehouse(ctx, input.ProductID, input.WarehouseID)
	if err != nil {
		return nil, apperr.Internal("failed to fetch inventory", err)
	}

	now := uc.clock.Now()
	var prevQty int
	var prevCost decimal.Decimal

	if inv == nil {
		// First stock-in creates the row.
		inv = &model.ProductInventory{
			ID:              uuid.New().String(),
			ProductID:       input.ProductID,
			WarehouseID:     input.WarehouseID,
			Quantity:        input.Quantity,
			MinimumStock:    input.MinimumStock,
			MaximumStock:    input.MaximumStock,
			ReorderPoint:    input.ReorderPoint,
			ReorderQuantity: input.ReorderQuantity,
			UnitCost:        input.UnitCost,
			BatchNumber:     input.BatchNumber,
			ExpiryDate:      input.ExpiryDate,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := uc.repo.Create(ctx, inv); err != nil {
			return nil, apperr.Internal("failed to create inventory", err)
		}
	} else {
		prevQty = inv.Quantity
		prevCost = inv.UnitCost
		// Weighted average cost across the old stock and the receipt.
		newQty := inv.Quantity + input.Quantity
		oldTotal := decimal.NewFromInt(int64(inv.Quantity)).Mul(inv.UnitCost)
		inTotal := decimal.NewFromInt(int64(input.Quantity)).Mul(input.UnitCost)
		inv.UnitCost = oldTotal.Add(inTotal).Div(decimal.NewFromInt(int64(newQty)))
		inv.Quantity = newQty
		if input.BatchNumber != nil {
			inv.BatchNumber = input.BatchNumber
		}
		if input.ExpiryDate != nil {
			inv.ExpiryDate = input.ExpiryDate
		}
		inv.UpdatedAt = now
		if err := uc.repo.Update(ctx, inv); err != nil {
			return nil, apperr.Internal("failed to update inventory", err)
		}
	}

	rollbackRow := func() {
		inv.Quantity = prevQty
		inv.UnitCost = prevCost
		if err := uc.repo.Update(ctx, inv); err != nil {
			uc.logger.Error("failed to roll back receive, manual reconciliation required",
				zap.String("product_id", inv.ProductID),
				zap.String("warehouse_id", inv.WarehouseID),
				zap.Error(err),
			)
		}
	}

	if _, err := uc.warehouses.UpdateOccupancy(ctx, input.WarehouseID, input.Quantity); err != nil {
		rollbackRow()
		return nil, err
	}

	totalCost := input.UnitCost.Mul(decimal.NewFromInt(int64(input.Quantity)))
	entry := &model.StockMovement{
		ProductID:     input.ProductID,
		ToWarehouseID: &input.WarehouseID,
		MovementType:  model.MovementInbound,
		Quantity:      input.Quantity,
		UnitCost:      &input.UnitCost,
		TotalCost:     &totalCost,
		PerformedBy:   input.PerformedBy,
		Notes:         fmt.Sprintf("goods receipt: %d units", input.Quantity),
	}
	if input.ReferenceType != "" {
		entry.ReferenceType = &input.ReferenceType
		entry.ReferenceID = &input.ReferenceID
	}
	if _, err := uc.ledger.Record(ctx, entry); err != nil {
		if _, occErr := uc.warehouses.UpdateOccupancy(ctx, input.WarehouseID, -input.Quantity); occErr != nil {
			uc.logger.Error("failed to roll back occupancy, manual reconciliation required",
				zap.String("warehouse_id", input.WarehouseID), zap.Error(occErr))
		}
		rollbackRow()
		return nil, err
	}

	uc.alerts.Evaluate(ctx, inv)
	return inv, nil
}

func (uc *inventoryUseCase) Adjust(ctx context.Context, input *dto.AdjustInput) (*model.ProductInventory, error) {
	switch input.Type {
	case dto.AdjustIncrease, dto.AdjustDecrease:
		if input.Quantity <= 0 {
			return nil, apperr.Invariant("%s adjustment requires a positive quantity, got %d", input.Type, input.Quantity)
		}
	case dto.AdjustSet:
		if input.Quantity < 0 {
			return nil, apperr.Invariant("cannot set quantity to a negative value, got %d", input.Quantity)
		}
	default:
		return nil, apperr.Config("unknown adjustment type %q", input.Type)
	}

	release, err := uc.acquire(ctx, lockKey(input.ProductID, input.WarehouseID))
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := uc.load(ctx, input.ProductID, input.WarehouseID)
	if err != nil {
		return nil, err
	}

	prevQty := inv.Quantity
	var newQty int
	switch input.Type {
	case dto.AdjustIncrease:
		newQty = prevQty + input.Quantity
	case dto.AdjustDecrease:
		if input.Quantity > inv.AvailableQuantity() {
			return nil, apperr.Invariant(
				"insufficient available stock for product %s: available %d, requested %d",
				input.ProductID, inv.AvailableQuantity(), input.Quantity,
			)
		}
		newQty = prevQty - input.Quantity
	case dto.AdjustSet:
		if input.Quantity < inv.ReservedQuantity {
			return nil, apperr.Invariant(
				"cannot set quantity to %d: %d units are reserved",
				input.Quantity, inv.ReservedQuantity,
			)
		}
		newQty = input.Quantity
	}

	delta := newQty - prevQty
	if delta == 0 {
		return inv, nil
	}
	if delta > 0 {
		ok, err := uc.warehouses.HasCapacity(ctx, input.WarehouseID, delta)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Invariant("warehouse %s lacks capacity for %d more units", input.WarehouseID, delta)
		}
	}

	inv.Quantity = newQty
	inv.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, apperr.Internal("failed to update inventory", err)
	}

	rollbackRow := func() {
		inv.Quantity = prevQty
		if err := uc.repo.Update(ctx, inv); err != nil {
			uc.logger.Error("failed to roll back adjustment, manual reconciliation required",
				zap.String("product_id", inv.ProductID),
				zap.String("warehouse_id", inv.WarehouseID),
				zap.Error(err),
			)
		}
	}

	if _, err := uc.warehouses.UpdateOccupancy(ctx, input.WarehouseID, delta); err != nil {
		rollbackRow()
		return nil, err
	}

	entry := &model.StockMovement{
		ProductID:    input.ProductID,
		MovementType: model.MovementAdjustment,
		Quantity:     abs(delta),
		PerformedBy:  input.PerformedBy,
		Notes:        input.Reason,
	}
	if delta > 0 {
		entry.ToWarehouseID = &input.WarehouseID
	} else {
		entry.FromWarehouseID = &input.WarehouseID
	}
	if _, err := uc.ledger.Record(ctx, entry); err != nil {
		if _, occErr := uc.warehouses.UpdateOccupancy(ctx, input.WarehouseID, -delta); occErr != nil {
			uc.logger.Error("failed to roll back occupancy, manual reconciliation required",
				zap.String("warehouse_id", input.WarehouseID), zap.Error(occErr))
		}
		rollbackRow()
		return nil, err
	}

	uc.alerts.Evaluate(ctx, inv)
	return inv, nil
}

// Transfer moves stock between two warehouses. Both sides are validated
// before anything mutates, both per-key locks are held in lexicographic
// warehouse order, and the TRANSFER ledger entry is written only after
// both halves succeed. A failure between the halves is compensated in
// place so no partial transfer is ever observable.
func (uc *inventoryUseCase) Transfer(ctx context.Context, input *dto.TransferInput) error {
	if input.FromWarehouseID == input.ToWarehouseID {
		return apperr.Invariant("cannot transfer within the same warehouse %s", input.FromWarehouseID)
	}
	if input.Quantity <= 0 {
		return apperr.Invariant("transfer quantity must be positive, got %d", input.Quantity)
	}

	first, second := input.FromWarehouseID, input.ToWarehouseID
	if second < first {
		first, second = second, first
	}
	releaseFirst, err := uc.acquire(ctx, lockKey(input.ProductID, first))
	if err != nil {
		return err
	}
	defer releaseFirst()
	releaseSecond, err := uc.acquire(ctx, lockKey(input.ProductID, second))
	if err != nil {
		return err
	}
	defer releaseSecond()

	// Validate everything up front: source stock, both warehouses active,
	// destination capacity. The common failure paths leave no state behind.
	src, err := uc.load(ctx, input.ProductID, input.FromWarehouseID)
	if err != nil {
		return err
	}
	if _, err := uc.activeWarehouse(ctx, input.FromWarehouseID); err != nil {
		return err
	}
	if _, err := uc.activeWarehouse(ctx, input.ToWarehouseID); err != nil {
		return err
	}
	if input.Quantity > src.AvailableQuantity() {
		return apperr.Invariant(
			"insufficient available stock for product %s in warehouse %s: available %d, requested %d",
			input.ProductID, input.FromWarehouseID, src.AvailableQuantity(), input.Quantity,
		)
	}
	ok, err := uc.warehouses.HasCapacity(ctx, input.ToWarehouseID, input.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Invariant("warehouse %s lacks capacity for %d units", input.ToWarehouseID, input.Quantity)
	}

	dest, err := uc.repo.GetByProductAndWarehouse(ctx, input.ProductID, input.ToWarehouseID)
	if err != nil {
		return apperr.Internal("failed to fetch destination inventory", err)
	}

	now := uc.clock.Now()

	// Half one: debit the source.
	src.Quantity -= input.Quantity
	src.UpdatedAt = now
	if err := uc.repo.Update(ctx, src); err != nil {
		return apperr.Internal("failed to debit source inventory", err)
	}
	undoSrc := func() {
		src.Quantity += input.Quantity
		if err := uc.repo.Update(ctx, src); err != nil {
			uc.logger.Error("failed to roll back source debit, manual reconciliation required",
				zap.String("product_id", input.ProductID),
				zap.String("warehouse_id", input.FromWarehouseID),
				zap.Error(err),
			)
		}
	}

	// Half two: credit the destination, inheriting source thresholds on
	// first contact.
	destWasNew := dest == nil
	if destWasNew {
		dest = &model.ProductInventory{
			ID:              uuid.New().String(),
			ProductID:       input.ProductID,
			WarehouseID:     input.ToWarehouseID,
			Quantity:        input.Quantity,
			MinimumStock:    src.MinimumStock,
			MaximumStock:    src.MaximumStock,
			ReorderPoint:    src.ReorderPoint,
			ReorderQuantity: src.ReorderQuantity,
			UnitCost:        src.UnitCost,
			BatchNumber:     src.BatchNumber,
			ExpiryDate:      src.ExpiryDate,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		err = uc.repo.Create(ctx, dest)
	} else {
		dest.Quantity += input.Quantity
		dest.UpdatedAt = now
		err = uc.repo.Update(ctx, dest)
	}
	if err != nil {
		undoSrc()
		return apperr.Internal("failed to credit destination inventory", err)
	}
	undoDest := func() {
		dest.Quantity -= input.Quantity
		if err := uc.repo.Update(ctx, dest); err != nil {
			uc.logger.Error("failed to roll back destination credit, manual reconciliation required",
				zap.String("product_id", input.ProductID),
				zap.String("warehouse_id", input.ToWarehouseID),
				zap.Error(err),
			)
		}
	}

	if _, err := uc.warehouses.UpdateOccupancy(ctx, input.FromWarehouseID, -input.Quantity); err != nil {
		undoDest()
		undoSrc()
		return err
	}
	if _, err := uc.warehouses.UpdateOccupancy(ctx, input.ToWarehouseID, input.Quantity); err != nil {
		if _, occErr := uc.warehouses.UpdateOccupancy(ctx, input.FromWarehouseID, input.Quantity); occErr != nil {
			uc.logger.Error("failed to roll back source occupancy, manual reconciliation required",
				zap.String("warehouse_id", input.FromWarehouseID), zap.Error(occErr))
		}
		undoDest()
		undoSrc()
		return err
	}

	totalCost := src.UnitCost.Mul(decimal.NewFromInt(int64(input.Quantity)))
	entry := &model.StockMovement{
		ProductID:       input.ProductID,
		FromWarehouseID: &input.FromWarehouseID,
		ToWarehouseID:   &input.ToWarehouseID,
		MovementType:    model.MovementTransfer,
		Quantity:        input.Quantity,
		UnitCost:        &src.UnitCost,
		TotalCost:       &totalCost,
		PerformedBy:     input.PerformedBy,
		Notes:           fmt.Sprintf("transfer of %d units", input.Quantity),
	}
	if _, err := uc.ledger.Record(ctx, entry); err != nil {
		if _, occErr := uc.warehouses.UpdateOccupancy(ctx, input.ToWarehouseID, -input.Quantity); occErr != nil {
			uc.logger.Error("failed to roll back destination occupancy, manual reconciliation required",
				zap.String("warehouse_id", input.ToWarehouseID), zap.Error(occErr))
		}
		if _, occErr := uc.warehouses.UpdateOccupancy(ctx, input.FromWarehouseID, input.Quantity); occErr != nil {
			uc.logger.Error("failed to roll back source occupancy, manual reconciliation required",
				zap.String("warehouse_id", input.FromWarehouseID), zap.Error(occErr))
		}
		undoDest()
		undoSrc()
		return err
	}

	uc.alerts.Evaluate(ctx, src)
	uc.alerts.Evaluate(ctx, dest)
	return nil
}

func (uc *inventoryUseCase) ReceiveReturn(ctx context.Context, input *dto.ReturnInput) (*model.ProductInventory, error) {
	if input.Quantity <= 0 {
		return nil, apperr.Invariant("return quantity must be positive, got %d", input.Quantity)
	}

	release, err := uc.acquire(ctx, lockKey(input.ProductID, input.WarehouseID))
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := uc.load(ctx, input.ProductID, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	ok, err := uc.warehouses.HasCapacity(ctx, input.WarehouseID, input.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Invariant("warehouse %s lacks capacity for %d returned units", input.WarehouseID, input.Quantity)
	}

	prevQty := inv.Quantity
	inv.Quantity += input.Quantity
	inv.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, apperr.Internal("failed to update inventory", err)
	}
	rollbackRow := func() {
		inv.Quantity = prevQty
		if err := uc.repo.Update(ctx, inv); err != nil {
			uc.logger.Error("failed to roll back return, manual reconciliation required",
				zap.String("product_id", inv.ProductID), zap.Error(err))
		}
	}

	if _, err := uc.warehouses.UpdateOccupancy(ctx, input.WarehouseID, input.Quantity); err != nil {
		rollbackRow()
		return nil, err
	}

	refType := "order"
	entry := &model.StockMovement{
		ProductID:     input.ProductID,
		ToWarehouseID: &input.WarehouseID,
		MovementType:  model.MovementReturn,
		Quantity:      input.Quantity,
		PerformedBy:   input.PerformedBy,
		ReferenceType: &refType,
		ReferenceID:   &input.OrderID,
		Notes:         fmt.Sprintf("customer return for order %s", input.OrderID),
	}
	if _, err := uc.ledger.Record(ctx, entry); err != nil {
		if _, occErr := uc.warehouses.UpdateOccupancy(ctx, input.WarehouseID, -input.Quantity); occErr != nil {
			uc.logger.Error("failed to roll back occupancy, manual reconciliation required",
				zap.String("warehouse_id", input.WarehouseID), zap.Error(occErr))
		}
		rollbackRow()
		return nil, err
	}

	uc.alerts.Evaluate(ctx, inv)
	return inv, nil
}

func (uc *inventoryUseCase) DeductSale(ctx context.Context, productID, warehouseID string, qty int, orderID, performedBy string) (*model.ProductInventory, error) {
	if qty <= 0 {
		return nil, apperr.Invariant("sale quantity must be positive, got %d", qty)
	}

	release, err := uc.acquire(ctx, lockKey(productID, warehouseID))
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := uc.load(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if qty > inv.AvailableQuantity() {
		return nil, apperr.Invariant(
			"insufficient available stock for product %s: available %d, requested %d",
			productID, inv.AvailableQuantity(), qty,
		)
	}

	prevQty := inv.Quantity
	inv.Quantity -= qty
	inv.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, apperr.Internal("failed to update inventory", err)
	}
	rollbackRow := func() {
		inv.Quantity = prevQty
		if err := uc.repo.Update(ctx, inv); err != nil {
			uc.logger.Error("failed to roll back sale deduction, manual reconciliation required",
				zap.String("product_id", productID), zap.Error(err))
		}
	}

	if _, err := uc.warehouses.UpdateOccupancy(ctx, warehouseID, -qty); err != nil {
		rollbackRow()
		return nil, err
	}

	refType := "sale"
	entry := &model.StockMovement{
		ProductID:       productID,
		FromWarehouseID: &warehouseID,
		MovementType:    model.MovementOutbound,
		Quantity:        qty,
		PerformedBy:     performedBy,
		ReferenceType:   &refType,
		ReferenceID:     &orderID,
		Notes:           fmt.Sprintf("sale for order %s", orderID),
	}
	if _, err := uc.ledger.Record(ctx, entry); err != nil {
		if _, occErr := uc.warehouses.UpdateOccupancy(ctx, warehouseID, qty); occErr != nil {
			uc.logger.Error("failed to roll back occupancy, manual reconciliation required",
				zap.String("warehouse_id", warehouseID), zap.Error(occErr))
		}
		rollbackRow()
		return nil, err
	}

	uc.alerts.Evaluate(ctx, inv)
	return inv, nil
}

func (uc *inventoryUseCase) ReserveStock(ctx context.Context, productID, warehouseID string, qty int, reservationID, performedBy string) (*model.ProductInventory, error) {
	if qty <= 0 {
		return nil, apperr.Invariant("reservation quantity must be positive, got %d", qty)
	}

	release, err := uc.acquire(ctx, lockKey(productID, warehouseID))
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := uc.load(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if qty > inv.AvailableQuantity() {
		return nil, apperr.Invariant(
			"insufficient available stock for product %s: available %d, requested %d",
			productID, inv.AvailableQuantity(), qty,
		)
	}

	inv.ReservedQuantity += qty
	inv.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, apperr.Internal("failed to update inventory", err)
	}

	refType := "reservation"
	entry := &model.StockMovement{
		ProductID:       productID,
		FromWarehouseID: &warehouseID,
		MovementType:    model.MovementReservation,
		Quantity:        qty,
		PerformedBy:     performedBy,
		ReferenceType:   &refType,
		ReferenceID:     &reservationID,
		Notes:           fmt.Sprintf("stock held for reservation %s", reservationID),
	}
	if _, err := uc.ledger.Record(ctx, entry); err != nil {
		inv.ReservedQuantity -= qty
		if rbErr := uc.repo.Update(ctx, inv); rbErr != nil {
			uc.logger.Error("failed to roll back reservation hold, manual reconciliation required",
				zap.String("product_id", productID), zap.Error(rbErr))
		}
		return nil, err
	}

	uc.alerts.Evaluate(ctx, inv)
	return inv, nil
}

func (uc *inventoryUseCase) ReleaseStock(ctx context.Context, productID, warehouseID string, qty int, reservationID, performedBy string) (*model.ProductInventory, error) {
	release, err := uc.acquire(ctx, lockKey(productID, warehouseID))
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := uc.load(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if qty > inv.ReservedQuantity {
		return nil, apperr.Invariant(
			"cannot release %d units for product %s: only %d reserved",
			qty, productID, inv.ReservedQuantity,
		)
	}

	inv.ReservedQuantity -= qty
	inv.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, apperr.Internal("failed to update inventory", err)
	}

	refType := "reservation"
	entry := &model.StockMovement{
		ProductID:     productID,
		ToWarehouseID: &warehouseID,
		MovementType:  model.MovementCancellation,
		Quantity:      qty,
		PerformedBy:   performedBy,
		ReferenceType: &refType,
		ReferenceID:   &reservationID,
		Notes:         fmt.Sprintf("reservation %s released", reservationID),
	}
	if _, err := uc.ledger.Record(ctx, entry); err != nil {
		inv.ReservedQuantity += qty
		if rbErr := uc.repo.Update(ctx, inv); rbErr != nil {
			uc.logger.Error("failed to roll back reservation release, manual reconciliation required",
				zap.String("product_id", productID), zap.Error(rbErr))
		}
		return nil, err
	}

	uc.alerts.Evaluate(ctx, inv)
	return inv, nil
}

func (uc *inventoryUseCase) ConsumeReserved(ctx context.Context, productID, warehouseID string, qty int, reservationID, orderID *string, performedBy string) (*model.ProductInventory, error) {
	release, err := uc.acquire(ctx, lockKey(productID, warehouseID))
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := uc.load(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if qty > inv.ReservedQuantity || qty > inv.Quantity {
		return nil, apperr.Invariant(
			"cannot consume %d reserved units for product %s: quantity %d, reserved %d",
			qty, productID, inv.Quantity, inv.ReservedQuantity,
		)
	}

	prevQty := inv.Quantity
	prevReserved := inv.ReservedQuantity
	inv.Quantity -= qty
	inv.ReservedQuantity -= qty
	inv.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, apperr.Internal("failed to update inventory", err)
	}
	rollbackRow := func() {
		inv.Quantity = prevQty
		inv.ReservedQuantity = prevReserved
		if err := uc.repo.Update(ctx, inv); err != nil {
			uc.logger.Error("failed to roll back reserved consumption, manual reconciliation required",
				zap.String("product_id", productID), zap.Error(err))
		}
	}

	if _, err := uc.warehouses.UpdateOccupancy(ctx, warehouseID, -qty); err != nil {
		rollbackRow()
		return nil, err
	}

	refType := "reservation"
	refID := reservationID
	if orderID != nil {
		refType = "order"
		refID = orderID
	}
	entry := &model.StockMovement{
		ProductID:       productID,
		FromWarehouseID: &warehouseID,
		MovementType:    model.MovementOutbound,
		Quantity:        qty,
		PerformedBy:     performedBy,
		ReferenceType:   &refType,
		ReferenceID:     refID,
		Notes:           fmt.Sprintf("reserved stock shipped (%d units)", qty),
	}
	if _, err := uc.ledger.Record(ctx, entry); err != nil {
		if _, occErr := uc.warehouses.UpdateOccupancy(ctx, warehouseID, qty); occErr != nil {
			uc.logger.Error("failed to roll back occupancy, manual reconciliation required",
				zap.String("warehouse_id", warehouseID), zap.Error(occErr))
		}
		rollbackRow()
		return nil, err
	}

	uc.alerts.Evaluate(ctx, inv)
	return inv, nil
}

func (uc *inventoryUseCase) GetStockLevels(ctx context.Context, productID string) (*model.StockSummary, error) {
	levels, err := uc.repo.LevelsByProduct(ctx, productID)
	if err != nil {
		return nil, apperr.Internal("failed to load stock levels", err)
	}

	summary := &model.StockSummary{ProductID: productID, Levels: levels}
	for _, l := range levels {
		summary.TotalQuantity += l.Quantity
		summary.TotalReserved += l.ReservedQuantity
		summary.TotalAvailable += l.AvailableQuantity
	}
	return summary, nil
}

func (uc *inventoryUseCase) CheckReorderRequirements(ctx context.Context, f *dto.ReorderFilters) ([]model.ProductInventory, int, error) {
	items, count, err := uc.repo.FindReorderNeeded(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal("failed to check reorder requirements", err)
	}
	return items, count, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
