package alert

import (
	"context"

	"github.com/stockward/inventory-service/internal/model"
)

// Notification is what crosses the transport boundary. Delivery (email,
// SMS, webhook fan-out) belongs to the consumer of the alerts topic, not
// to this engine.
type Notification struct {
	AlertID      string              `json:"alert_id"`
	AlertType    model.AlertType     `json:"alert_type"`
	ProductID    string              `json:"product_id"`
	WarehouseID  *string             `json:"warehouse_id,omitempty"`
	Threshold    int                 `json:"threshold"`
	CurrentValue int                 `json:"current_value"`
	Message      string              `json:"message"`
	Severity     model.AlertSeverity `json:"severity"`
	Channels     []string            `json:"channels"`
}

type Notifier interface {
	Notify(ctx context.Context, n *Notification) error
}
