package model

import "time"

type AlertType string

const (
	AlertLowStock     AlertType = "LOW_STOCK"
	AlertOutOfStock   AlertType = "OUT_OF_STOCK"
	AlertOverstock    AlertType = "OVERSTOCK"
	AlertExpiringSoon AlertType = "EXPIRING_SOON"
	AlertExpired      AlertType = "EXPIRED"
)

type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityHigh     AlertSeverity = "high"
	SeverityMedium   AlertSeverity = "medium"
	SeverityLow      AlertSeverity = "low"
)

// Severity maps an alert type to its notification severity.
func (t AlertType) Severity() AlertSeverity {
	switch t {
	case AlertOutOfStock, AlertExpired:
		return SeverityCritical
	case AlertLowStock, AlertExpiringSoon:
		return SeverityHigh
	case AlertOverstock:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Recognized metadata keys on a StockAlert. The metadata bag carries only
// these primitive flags; anything else is rejected at configuration time.
const (
	AlertMetaChannelEmail   = "channel_email"   // "true"/"false"
	AlertMetaChannelSMS     = "channel_sms"     // "true"/"false"
	AlertMetaChannelWebhook = "channel_webhook" // "true"/"false"
	AlertMetaWebhookURL     = "webhook_url"
	AlertMetaRecipient      = "recipient"
)

// StockAlert is a configured threshold rule. It is edge-triggered: a
// notification fires only when the rule transitions into its triggered
// condition; NotificationSent stays true while the condition holds and
// resets once it clears.
type StockAlert struct {
	ID               string            `db:"id" json:"id"`
	ProductID        string            `db:"product_id" json:"product_id"`
	WarehouseID      *string           `db:"warehouse_id" json:"warehouse_id"`
	AlertType        AlertType         `db:"alert_type" json:"alert_type"`
	Threshold        int               `db:"threshold" json:"threshold"`
	CurrentValue     int               `db:"current_value" json:"current_value"`
	IsActive         bool              `db:"is_active" json:"is_active"`
	IsAcknowledged   bool              `db:"is_acknowledged" json:"is_acknowledged"`
	AcknowledgedBy   *string           `db:"acknowledged_by" json:"acknowledged_by"`
	AcknowledgedAt   *time.Time        `db:"acknowledged_at" json:"acknowledged_at"`
	NotificationSent bool              `db:"notification_sent" json:"notification_sent"`
	NotifiedAt       *time.Time        `db:"notified_at" json:"notified_at"`
	Metadata         map[string]string `db:"-" json:"metadata"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

// Matches reports whether the rule applies to the given inventory row.
// A rule with no warehouse applies to the product in every warehouse.
func (a *StockAlert) Matches(inv *ProductInventory) bool {
	if a.ProductID != inv.ProductID {
		return false
	}
	return a.WarehouseID == nil || *a.WarehouseID == inv.WarehouseID
}
