package dto

type ReorderFilters struct {
	WarehouseID *string
	Page        int
	PageSize    int
}
