package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockward/inventory-service/internal/auth"
	"github.com/stockward/inventory-service/internal/inventory"
	"github.com/stockward/inventory-service/internal/inventory/dto"
	"github.com/stockward/inventory-service/internal/pkg/web"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger *zap.Logger
}

func NewInventoryHandler(uc inventory.UseCase, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Receive(c *gin.Context) {
	var input dto.ReceiveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	input.PerformedBy = auth.UserID(c)

	inv, err := h.uc.Receive(c.Request.Context(), &input)
	if err != nil {
		h.logger.Error("failed to receive stock",
			zap.String("product_id", input.ProductID),
			zap.String("warehouse_id", input.WarehouseID),
			zap.Error(err))
		web.Error(c, err)
		return
	}

	web.Created(c, inv)
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var input dto.AdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	input.PerformedBy = auth.UserID(c)

	inv, err := h.uc.Adjust(c.Request.Context(), &input)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, inv)
}

func (h *InventoryHandler) Transfer(c *gin.Context) {
	var input dto.TransferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	input.PerformedBy = auth.UserID(c)

	if err := h.uc.Transfer(c.Request.Context(), &input); err != nil {
		h.logger.Error("failed to transfer stock",
			zap.String("product_id", input.ProductID),
			zap.String("from_warehouse_id", input.FromWarehouseID),
			zap.String("to_warehouse_id", input.ToWarehouseID),
			zap.Error(err))
		web.Error(c, err)
		return
	}

	web.Success(c, gin.H{"transferred": input.Quantity})
}

func (h *InventoryHandler) Return(c *gin.Context) {
	var input dto.ReturnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	input.PerformedBy = auth.UserID(c)

	inv, err := h.uc.ReceiveReturn(c.Request.Context(), &input)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, inv)
}

func (h *InventoryHandler) GetStockLevels(c *gin.Context) {
	summary, err := h.uc.GetStockLevels(c.Request.Context(), c.Param("productId"))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, summary)
}

func (h *InventoryHandler) CheckReorder(c *gin.Context) {
	page, pageSize := web.Page(c)
	f := &dto.ReorderFilters{
		WarehouseID: web.StringQuery(c, "warehouse_id"),
		Page:        page,
		PageSize:    pageSize,
	}

	items, count, err := h.uc.CheckReorderRequirements(c.Request.Context(), f)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Paginated(c, items, count, page, pageSize)
}
