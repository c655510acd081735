package dto

import "time"

type MovementFilters struct {
	ProductID     string
	WarehouseID   string
	MovementType  string
	ReferenceType string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}
