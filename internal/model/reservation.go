package model

import "time"

type ReservationStatus string

const (
	// ReservationReserved holds stock against an in-flight order.
	ReservationReserved ReservationStatus = "RESERVED"
	// ReservationAvailable means the hold was released back to the pool
	// (cancelled or expired). Terminal.
	ReservationAvailable ReservationStatus = "AVAILABLE"
	// ReservationSold means the order was fulfilled and stock left the
	// building. Terminal.
	ReservationSold ReservationStatus = "SOLD"
)

// StockReservation is a temporary hold on available quantity.
// Lifecycle: RESERVED -> SOLD (confirm) or RESERVED -> AVAILABLE
// (cancel/expire). No transition leaves a terminal state.
type StockReservation struct {
	ID          string            `db:"id" json:"id"`
	ProductID   string            `db:"product_id" json:"product_id"`
	WarehouseID string            `db:"warehouse_id" json:"warehouse_id"`
	Quantity    int               `db:"quantity" json:"quantity"`
	Status      ReservationStatus `db:"status" json:"status"`
	ExpiresAt   time.Time         `db:"expires_at" json:"expires_at"`
	OrderID     *string           `db:"order_id" json:"order_id"`
	CustomerID  *string           `db:"customer_id" json:"customer_id"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

func (r *StockReservation) IsTerminal() bool {
	return r.Status == ReservationSold || r.Status == ReservationAvailable
}

func (r *StockReservation) IsExpired(now time.Time) bool {
	return r.Status == ReservationReserved && r.ExpiresAt.Before(now)
}
