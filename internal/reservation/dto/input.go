package dto

type CreateReservationInput struct {
	ProductID   string  `json:"product_id" binding:"required"`
	WarehouseID string  `json:"warehouse_id" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required"`
	ExpiryHours int     `json:"expiry_hours"`
	OrderID     *string `json:"order_id"`
	CustomerID  *string `json:"customer_id"`
	PerformedBy string  `json:"-"`
}

type ExtendReservationInput struct {
	Hours int `json:"hours" binding:"required"`
}

type ReservationFilters struct {
	ProductID   string
	WarehouseID string
	Status      string
	OrderID     string
	Page        int
	PageSize    int
}
