package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stockward/inventory-service/internal/apperr"
	"github.com/stockward/inventory-service/internal/ledger"
	"github.com/stockward/inventory-service/internal/ledger/dto"
	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/pkg/clock"
	"github.com/stockward/inventory-service/internal/pkg/search"
	"go.uber.org/zap"
)

const movementIndex = "stock-movements"

type ledgerUseCase struct {
	repo   ledger.Repository
	clock  clock.Clock
	search *search.Client // nil when elasticsearch is disabled
	logger *zap.Logger
}

func NewLedgerUseCase(repo ledger.Repository, clk clock.Clock, searchClient *search.Client, log *zap.Logger) ledger.UseCase {
	return &ledgerUseCase{
		repo:   repo,
		clock:  clk,
		search: searchClient,
		logger: log,
	}
}

func (uc *ledgerUseCase) Record(ctx context.Context, entry *model.StockMovement) (*model.StockMovement, error) {
	if err := validate(entry); err != nil {
		return nil, err
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = uc.clock.Now()

	if err := uc.repo.Insert(ctx, entry); err != nil {
		return nil, apperr.Internal("failed to append movement", err)
	}

	if uc.search != nil {
		go uc.index(entry)
	}

	return entry, nil
}

// validate enforces the warehouse-column shape per movement type.
func validate(m *model.StockMovement) error {
	if m.Quantity <= 0 {
		return apperr.Invariant("movement quantity must be positive, got %d", m.Quantity)
	}

	from := m.FromWarehouseID != nil && *m.FromWarehouseID != ""
	to := m.ToWarehouseID != nil && *m.ToWarehouseID != ""

	switch m.MovementType {
	case model.MovementTransfer:
		if !from || !to {
			return apperr.Invariant("TRANSFER movement requires both source and destination warehouse")
		}
	case model.MovementInbound, model.MovementReturn:
		if from || !to {
			return apperr.Invariant("%s movement requires only a destination warehouse", m.MovementType)
		}
	case model.MovementOutbound:
		if !from || to {
			return apperr.Invariant("OUTBOUND movement requires only a source warehouse")
		}
	case model.MovementAdjustment, model.MovementReservation, model.MovementCancellation:
		if from == to {
			return apperr.Invariant("%s movement requires exactly one warehouse", m.MovementType)
		}
	default:
		return apperr.Invariant("unknown movement type %q", m.MovementType)
	}
	return nil
}

func (uc *ledgerUseCase) index(entry *model.StockMovement) {
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := uc.search.Index(ctx, movementIndex, entry.ID, body); err != nil {
		uc.logger.Warn("failed to index movement",
			zap.String("movement_id", entry.ID),
			zap.Error(err),
		)
	}
}

func (uc *ledgerUseCase) FindByProduct(ctx context.Context, productID string, page, pageSize int) ([]model.StockMovement, int, error) {
	return uc.repo.Find(ctx, &dto.MovementFilters{ProductID: productID, Page: page, PageSize: pageSize})
}

func (uc *ledgerUseCase) FindByWarehouse(ctx context.Context, warehouseID string, page, pageSize int) ([]model.StockMovement, int, error) {
	return uc.repo.Find(ctx, &dto.MovementFilters{WarehouseID: warehouseID, Page: page, PageSize: pageSize})
}

func (uc *ledgerUseCase) FindByDateRange(ctx context.Context, from, to time.Time, page, pageSize int) ([]model.StockMovement, int, error) {
	return uc.repo.Find(ctx, &dto.MovementFilters{From: &from, To: &to, Page: page, PageSize: pageSize})
}

func (uc *ledgerUseCase) FindByReference(ctx context.Context, referenceType, referenceID string) ([]model.StockMovement, int, error) {
	return uc.repo.Find(ctx, &dto.MovementFilters{ReferenceType: referenceType, ReferenceID: referenceID})
}

func (uc *ledgerUseCase) List(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.Find(ctx, f)
}

// Summarize folds every matching entry. With a warehouse filter, a
// TRANSFER counts as inbound on its destination leg and outbound on its
// source leg; without one, both legs are counted so the totals remain a
// faithful event count. Reservations and cancellations hold no physical
// stock and do not contribute.
func (uc *ledgerUseCase) Summarize(ctx context.Context, productID string, warehouseID *string) (*model.MovementSummary, error) {
	filters := &dto.MovementFilters{ProductID: productID}
	if warehouseID != nil {
		filters.WarehouseID = *warehouseID
	}

	entries, _, err := uc.repo.Find(ctx, filters)
	if err != nil {
		return nil, apperr.Internal("failed to load movements for summary", err)
	}

	summary := &model.MovementSummary{ProductID: productID, WarehouseID: warehouseID}
	for _, m := range entries {
		inbound, outbound := fold(&m, warehouseID)
		summary.TotalInbound += inbound
		summary.TotalOutbound += outbound
	}
	summary.NetChange = summary.TotalInbound - summary.TotalOutbound
	return summary, nil
}

func fold(m *model.StockMovement, warehouseID *string) (inbound, outbound int) {
	matchesFrom := m.FromWarehouseID != nil && (warehouseID == nil || *m.FromWarehouseID == *warehouseID)
	matchesTo := m.ToWarehouseID != nil && (warehouseID == nil || *m.ToWarehouseID == *warehouseID)

	switch m.MovementType {
	case model.MovementInbound, model.MovementReturn:
		if matchesTo {
			inbound = m.Quantity
		}
	case model.MovementOutbound:
		if matchesFrom {
			outbound = m.Quantity
		}
	case model.MovementTransfer:
		if matchesTo {
			inbound = m.Quantity
		}
		if matchesFrom {
			outbound = m.Quantity
		}
	case model.MovementAdjustment:
		if matchesTo {
			inbound = m.Quantity
		} else if matchesFrom {
			outbound = m.Quantity
		}
	}
	return inbound, outbound
}
