package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdjustmentType string

const (
	AdjustIncrease AdjustmentType = "increase"
	AdjustDecrease AdjustmentType = "decrease"
	AdjustSet      AdjustmentType = "set"
)

type AdjustInput struct {
	ProductID   string         `json:"product_id" binding:"required"`
	WarehouseID string         `json:"warehouse_id" binding:"required"`
	Type        AdjustmentType `json:"type" binding:"required"`
	// No required binding: "set" to 0 is a legal adjustment (quantity is
	// driven to zero, rows are never deleted). Per-type bounds live in
	// the usecase.
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason" binding:"required"`
	PerformedBy string `json:"-"`
}

type TransferInput struct {
	ProductID       string `json:"product_id" binding:"required"`
	FromWarehouseID string `json:"from_warehouse_id" binding:"required"`
	ToWarehouseID   string `json:"to_warehouse_id" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required"`
	PerformedBy     string `json:"-"`
}

type ReceiveInput struct {
	ProductID       string          `json:"product_id" binding:"required"`
	WarehouseID     string          `json:"warehouse_id" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	MinimumStock    int             `json:"minimum_stock"`
	MaximumStock    int             `json:"maximum_stock"`
	ReorderPoint    int             `json:"reorder_point"`
	ReorderQuantity int             `json:"reorder_quantity"`
	BatchNumber     *string         `json:"batch_number"`
	ExpiryDate      *time.Time      `json:"expiry_date"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id"`
	PerformedBy     string          `json:"-"`
}

type ReturnInput struct {
	ProductID   string `json:"product_id" binding:"required"`
	WarehouseID string `json:"warehouse_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	OrderID     string `json:"order_id" binding:"required"`
	PerformedBy string `json:"-"`
}
