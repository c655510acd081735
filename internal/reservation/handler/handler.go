package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockward/inventory-service/internal/auth"
	"github.com/stockward/inventory-service/internal/pkg/web"
	"github.com/stockward/inventory-service/internal/reservation"
	"github.com/stockward/inventory-service/internal/reservation/dto"
)

type ReservationHandler struct {
	uc     reservation.UseCase
	logger *zap.Logger
}

func NewReservationHandler(uc reservation.UseCase, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var input dto.CreateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	input.PerformedBy = auth.UserID(c)

	res, err := h.uc.Create(c.Request.Context(), &input)
	if err != nil {
		h.logger.Error("failed to create reservation",
			zap.String("product_id", input.ProductID),
			zap.String("warehouse_id", input.WarehouseID),
			zap.Error(err))
		web.Error(c, err)
		return
	}

	web.Created(c, res)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	res, err := h.uc.Cancel(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, res)
}

func (h *ReservationHandler) Confirm(c *gin.Context) {
	res, err := h.uc.Confirm(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, res)
}

func (h *ReservationHandler) Extend(c *gin.Context) {
	var input dto.ExtendReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := h.uc.Extend(c.Request.Context(), c.Param("id"), input.Hours)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, res)
}

func (h *ReservationHandler) GetByID(c *gin.Context) {
	res, err := h.uc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, res)
}

func (h *ReservationHandler) List(c *gin.Context) {
	page, pageSize := web.Page(c)
	f := &dto.ReservationFilters{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Status:      c.Query("status"),
		OrderID:     c.Query("order_id"),
		Page:        page,
		PageSize:    pageSize,
	}

	items, count, err := h.uc.List(c.Request.Context(), f)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Paginated(c, items, count, page, pageSize)
}
