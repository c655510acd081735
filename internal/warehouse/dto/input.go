package dto

type CreateWarehouseInput struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required"`
}

type UpdateWarehouseInput struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
}
