package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockward/inventory-service/internal/pkg/web"
	"github.com/stockward/inventory-service/internal/warehouse"
	"github.com/stockward/inventory-service/internal/warehouse/dto"
)

type WarehouseHandler struct {
	uc     warehouse.UseCase
	logger *zap.Logger
}

func NewWarehouseHandler(uc warehouse.UseCase, log *zap.Logger) *WarehouseHandler {
	return &WarehouseHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *WarehouseHandler) Create(c *gin.Context) {
	var input dto.CreateWarehouseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	wh, err := h.uc.Create(c.Request.Context(), &input)
	if err != nil {
		h.logger.Error("failed to create warehouse", zap.String("code", input.Code), zap.Error(err))
		web.Error(c, err)
		return
	}

	web.Created(c, wh)
}

func (h *WarehouseHandler) Update(c *gin.Context) {
	var input dto.UpdateWarehouseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	wh, err := h.uc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, wh)
}

func (h *WarehouseHandler) Deactivate(c *gin.Context) {
	wh, err := h.uc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, wh)
}

func (h *WarehouseHandler) GetByID(c *gin.Context) {
	wh, err := h.uc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, wh)
}

func (h *WarehouseHandler) CheckCapacity(c *gin.Context) {
	qty, ok := web.IntQuery(c, "qty")
	if !ok || qty < 0 {
		web.BadRequest(c, "qty query parameter is required and must be >= 0")
		return
	}

	has, err := h.uc.HasCapacity(c.Request.Context(), c.Param("id"), qty)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, gin.H{"has_capacity": has, "quantity": qty})
}

func (h *WarehouseHandler) List(c *gin.Context) {
	items, err := h.uc.List(c.Request.Context(), web.BoolQuery(c, "active_only"))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, items)
}
