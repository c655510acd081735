package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockward/inventory-service/internal/alert"
	"github.com/stockward/inventory-service/internal/alert/dto"
	"github.com/stockward/inventory-service/internal/auth"
	"github.com/stockward/inventory-service/internal/pkg/web"
)

type AlertHandler struct {
	uc     alert.UseCase
	logger *zap.Logger
}

func NewAlertHandler(uc alert.UseCase, log *zap.Logger) *AlertHandler {
	return &AlertHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AlertHandler) Configure(c *gin.Context) {
	var input dto.ConfigureAlertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	a, err := h.uc.Configure(c.Request.Context(), &input)
	if err != nil {
		h.logger.Error("failed to configure alert",
			zap.String("product_id", input.ProductID),
			zap.String("alert_type", input.AlertType),
			zap.Error(err))
		web.Error(c, err)
		return
	}

	web.Created(c, a)
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	a, err := h.uc.Acknowledge(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, a)
}

func (h *AlertHandler) Deactivate(c *gin.Context) {
	a, err := h.uc.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, a)
}

func (h *AlertHandler) GetByID(c *gin.Context) {
	a, err := h.uc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, a)
}

func (h *AlertHandler) List(c *gin.Context) {
	page, pageSize := web.Page(c)
	f := &dto.AlertFilters{
		ProductID:  c.Query("product_id"),
		ActiveOnly: web.BoolQuery(c, "active_only"),
		Page:       page,
		PageSize:   pageSize,
	}

	items, count, err := h.uc.List(c.Request.Context(), f)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Paginated(c, items, count, page, pageSize)
}
