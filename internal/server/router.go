package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	alerthandler "github.com/stockward/inventory-service/internal/alert/handler"
	inventoryhandler "github.com/stockward/inventory-service/internal/inventory/handler"
	ledgerhandler "github.com/stockward/inventory-service/internal/ledger/handler"
	reservationhandler "github.com/stockward/inventory-service/internal/reservation/handler"
	warehousehandler "github.com/stockward/inventory-service/internal/warehouse/handler"
)

type Handlers struct {
	Warehouse   *warehousehandler.WarehouseHandler
	Inventory   *inventoryhandler.InventoryHandler
	Ledger      *ledgerhandler.LedgerHandler
	Reservation *reservationhandler.ReservationHandler
	Alert       *alerthandler.AlertHandler
}

func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	{
		warehouses := api.Group("/warehouses")
		{
			warehouses.POST("", h.Warehouse.Create)
			warehouses.GET("", h.Warehouse.List)
			warehouses.GET("/:id", h.Warehouse.GetByID)
			warehouses.PUT("/:id", h.Warehouse.Update)
			warehouses.POST("/:id/deactivate", h.Warehouse.Deactivate)
			warehouses.GET("/:id/capacity", h.Warehouse.CheckCapacity)
		}

		inventory := api.Group("/inventory")
		{
			inventory.POST("/receive", h.Inventory.Receive)
			inventory.POST("/adjust", h.Inventory.Adjust)
			inventory.POST("/transfer", h.Inventory.Transfer)
			inventory.POST("/returns", h.Inventory.Return)
			inventory.GET("/products/:productId/levels", h.Inventory.GetStockLevels)
			inventory.GET("/reorder", h.Inventory.CheckReorder)
		}

		reservations := api.Group("/reservations")
		{
			reservations.POST("", h.Reservation.Create)
			reservations.GET("", h.Reservation.List)
			reservations.GET("/:id", h.Reservation.GetByID)
			reservations.POST("/:id/cancel", h.Reservation.Cancel)
			reservations.POST("/:id/confirm", h.Reservation.Confirm)
			reservations.POST("/:id/extend", h.Reservation.Extend)
		}

		movements := api.Group("/movements")
		{
			movements.GET("", h.Ledger.List)
			movements.GET("/summary", h.Ledger.Summarize)
			movements.GET("/products/:productId", h.Ledger.ListByProduct)
			movements.GET("/warehouses/:warehouseId", h.Ledger.ListByWarehouse)
			movements.GET("/references/:referenceType/:referenceId", h.Ledger.ListByReference)
		}

		alerts := api.Group("/alerts")
		{
			alerts.POST("", h.Alert.Configure)
			alerts.GET("", h.Alert.List)
			alerts.GET("/:id", h.Alert.GetByID)
			alerts.POST("/:id/acknowledge", h.Alert.Acknowledge)
			alerts.POST("/:id/deactivate", h.Alert.Deactivate)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	return r
}
