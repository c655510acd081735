package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockward/inventory-service/internal/ledger"
	"github.com/stockward/inventory-service/internal/ledger/dto"
	"github.com/stockward/inventory-service/internal/pkg/web"
)

type LedgerHandler struct {
	uc     ledger.UseCase
	logger *zap.Logger
}

func NewLedgerHandler(uc ledger.UseCase, log *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *LedgerHandler) List(c *gin.Context) {
	page, pageSize := web.Page(c)
	f := &dto.MovementFilters{
		ProductID:     c.Query("product_id"),
		WarehouseID:   c.Query("warehouse_id"),
		MovementType:  c.Query("movement_type"),
		ReferenceType: c.Query("reference_type"),
		ReferenceID:   c.Query("reference_id"),
		Page:          page,
		PageSize:      pageSize,
	}

	if from, ok := parseTimeQuery(c, "from"); ok {
		f.From = &from
	}
	if to, ok := parseTimeQuery(c, "to"); ok {
		f.To = &to
	}

	items, count, err := h.uc.List(c.Request.Context(), f)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Paginated(c, items, count, page, pageSize)
}

func (h *LedgerHandler) ListByProduct(c *gin.Context) {
	page, pageSize := web.Page(c)

	items, count, err := h.uc.FindByProduct(c.Request.Context(), c.Param("productId"), page, pageSize)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Paginated(c, items, count, page, pageSize)
}

func (h *LedgerHandler) ListByWarehouse(c *gin.Context) {
	page, pageSize := web.Page(c)

	items, count, err := h.uc.FindByWarehouse(c.Request.Context(), c.Param("warehouseId"), page, pageSize)
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Paginated(c, items, count, page, pageSize)
}

func (h *LedgerHandler) ListByReference(c *gin.Context) {
	items, count, err := h.uc.FindByReference(c.Request.Context(), c.Param("referenceType"), c.Param("referenceId"))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Paginated(c, items, count, 1, count)
}

func (h *LedgerHandler) Summarize(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		web.BadRequest(c, "product_id query parameter is required")
		return
	}

	summary, err := h.uc.Summarize(c.Request.Context(), productID, web.StringQuery(c, "warehouse_id"))
	if err != nil {
		web.Error(c, err)
		return
	}

	web.Success(c, summary)
}

func parseTimeQuery(c *gin.Context, param string) (time.Time, bool) {
	s := c.Query(param)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		if t, err = time.Parse("2006-01-02", s); err != nil {
			return time.Time{}, false
		}
	}
	return t, true
}
