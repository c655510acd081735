package dto

type ConfigureAlertInput struct {
	ProductID   string            `json:"product_id" binding:"required"`
	WarehouseID *string           `json:"warehouse_id"`
	AlertType   string            `json:"alert_type" binding:"required"`
	Threshold   int               `json:"threshold"`
	Metadata    map[string]string `json:"metadata"`
}

type AlertFilters struct {
	ProductID  string
	ActiveOnly bool
	Page       int
	PageSize   int
}
