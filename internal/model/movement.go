package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementInbound      MovementType = "INBOUND"
	MovementOutbound     MovementType = "OUTBOUND"
	MovementTransfer     MovementType = "TRANSFER"
	MovementAdjustment   MovementType = "ADJUSTMENT"
	MovementReservation  MovementType = "RESERVATION"
	MovementCancellation MovementType = "CANCELLATION"
	MovementReturn       MovementType = "RETURN"
)

// StockMovement is one immutable ledger entry. Quantity is always the
// absolute size of the event (> 0); direction is carried by the type and
// the from/to warehouse columns: both set for TRANSFER, only To for
// INBOUND/RETURN, only From for OUTBOUND, either for ADJUSTMENT depending
// on sign. Entries are never updated or deleted.
type StockMovement struct {
	ID              string           `db:"id" json:"id"`
	ProductID       string           `db:"product_id" json:"product_id"`
	FromWarehouseID *string          `db:"from_warehouse_id" json:"from_warehouse_id"`
	ToWarehouseID   *string          `db:"to_warehouse_id" json:"to_warehouse_id"`
	MovementType    MovementType     `db:"movement_type" json:"movement_type"`
	Quantity        int              `db:"quantity" json:"quantity"`
	UnitCost        *decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	TotalCost       *decimal.Decimal `db:"total_cost" json:"total_cost"`
	PerformedBy     string           `db:"performed_by" json:"performed_by"`
	ReferenceType   *string          `db:"reference_type" json:"reference_type"`
	ReferenceID     *string          `db:"reference_id" json:"reference_id"`
	Notes           string           `db:"notes" json:"notes"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// MovementSummary is the fold of a product's ledger entries.
// Inbound counts INBOUND, RETURN and TRANSFER-in legs; outbound counts
// OUTBOUND and TRANSFER-out legs. Reservations hold no physical stock and
// fold to zero.
type MovementSummary struct {
	ProductID     string  `json:"product_id"`
	WarehouseID   *string `json:"warehouse_id"`
	TotalInbound  int     `json:"total_inbound"`
	TotalOutbound int     `json:"total_outbound"`
	NetChange     int     `json:"net_change"`
}
