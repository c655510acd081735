package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductInventory tracks stock for one (product, warehouse) pair.
// AvailableQuantity is derived: it must equal Quantity - ReservedQuantity
// after every mutation. Rows are created on first stock-in and never
// deleted; quantity is driven to zero instead.
type ProductInventory struct {
	ID               string          `db:"id" json:"id"`
	ProductID        string          `db:"product_id" json:"product_id"`
	WarehouseID      string          `db:"warehouse_id" json:"warehouse_id"`
	Quantity         int             `db:"quantity" json:"quantity"`
	ReservedQuantity int             `db:"reserved_quantity" json:"reserved_quantity"`
	MinimumStock     int             `db:"minimum_stock" json:"minimum_stock"`
	MaximumStock     int             `db:"maximum_stock" json:"maximum_stock"`
	ReorderPoint     int             `db:"reorder_point" json:"reorder_point"`
	ReorderQuantity  int             `db:"reorder_quantity" json:"reorder_quantity"`
	UnitCost         decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	BatchNumber      *string         `db:"batch_number" json:"batch_number"`
	ExpiryDate       *time.Time      `db:"expiry_date" json:"expiry_date"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// AvailableQuantity is the portion sellable right now.
func (inv *ProductInventory) AvailableQuantity() int {
	return inv.Quantity - inv.ReservedQuantity
}

// StockLevel is the per-warehouse line of a cross-warehouse stock summary.
type StockLevel struct {
	WarehouseID       string          `db:"warehouse_id" json:"warehouse_id"`
	WarehouseCode     string          `db:"warehouse_code" json:"warehouse_code"`
	Quantity          int             `db:"quantity" json:"quantity"`
	ReservedQuantity  int             `db:"reserved_quantity" json:"reserved_quantity"`
	AvailableQuantity int             `db:"available_quantity" json:"available_quantity"`
	UnitCost          decimal.Decimal `db:"unit_cost" json:"unit_cost"`
}

// StockSummary aggregates a product's stock across all warehouses.
type StockSummary struct {
	ProductID      string       `json:"product_id"`
	TotalQuantity  int          `json:"total_quantity"`
	TotalReserved  int          `json:"total_reserved"`
	TotalAvailable int          `json:"total_available"`
	Levels         []StockLevel `json:"levels"`
}
