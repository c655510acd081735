package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockward/inventory-service/internal/alert"
	"github.com/stockward/inventory-service/internal/alert/dto"
	"github.com/stockward/inventory-service/internal/apperr"
	"github.com/stockward/inventory-service/internal/model"
	"github.com/stockward/inventory-service/internal/pkg/clock"
	"go.uber.org/zap"
)

var validTypes = map[model.AlertType]bool{
	model.AlertLowStock:     true,
	model.AlertOutOfStock:   true,
	model.AlertOverstock:    true,
	model.AlertExpiringSoon: true,
	model.AlertExpired:      true,
}

var recognizedMetaKeys = map[string]bool{
	model.AlertMetaChannelEmail:   true,
	model.AlertMetaChannelSMS:     true,
	model.AlertMetaChannelWebhook: true,
	model.AlertMetaWebhookURL:     true,
	model.AlertMetaRecipient:      true,
}

type alertUseCase struct {
	repo     alert.Repository
	notifier alert.Notifier
	clock    clock.Clock
	logger   *zap.Logger
}

func NewAlertUseCase(repo alert.Repository, notifier alert.Notifier, clk clock.Clock, log *zap.Logger) alert.UseCase {
	return &alertUseCase{
		repo:     repo,
		notifier: notifier,
		clock:    clk,
		logger:   log,
	}
}

func (uc *alertUseCase) Configure(ctx context.Context, input *dto.ConfigureAlertInput) (*model.StockAlert, error) {
	alertType := model.AlertType(input.AlertType)
	if !validTypes[alertType] {
		return nil, apperr.Config("unknown alert type %q", input.AlertType)
	}

	switch alertType {
	case model.AlertOutOfStock:
		if input.Threshold != 0 {
			return nil, apperr.Config("OUT_OF_STOCK alert takes no threshold, got %d", input.Threshold)
		}
	case model.AlertExpired:
		if input.Threshold != 0 {
			return nil, apperr.Config("EXPIRED alert takes no threshold, got %d", input.Threshold)
		}
	case model.AlertOverstock:
		if input.Threshold <= 0 {
			return nil, apperr.Config("OVERSTOCK alert requires a positive threshold, got %d", input.Threshold)
		}
	default:
		if input.Threshold < 0 {
			return nil, apperr.Config("%s alert threshold cannot be negative, got %d", alertType, input.Threshold)
		}
	}

	for key := range input.Metadata {
		if !recognizedMetaKeys[key] {
			return nil, apperr.Config("unrecognized alert metadata key %q", key)
		}
	}

	now := uc.clock.Now()
	a := &model.StockAlert{
		ID:          uuid.New().String(),
		ProductID:   input.ProductID,
		WarehouseID: input.WarehouseID,
		AlertType:   alertType,
		Threshold:   input.Threshold,
		IsActive:    true,
		Metadata:    input.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, a); err != nil {
		return nil, apperr.Internal("failed to create alert", err)
	}
	return a, nil
}

func (uc *alertUseCase) Acknowledge(ctx context.Context, id, userID string) (*model.StockAlert, error) {
	a, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, apperr.StateTransition("alert %s is deactivated", id)
	}

	now := uc.clock.Now()
	a.IsAcknowledged = true
	a.AcknowledgedBy = &userID
	a.AcknowledgedAt = &now
	a.UpdatedAt = now

	if err := uc.repo.Update(ctx, a); err != nil {
		return nil, apperr.Internal("failed to acknowledge alert", err)
	}
	return a, nil
}

func (uc *alertUseCase) Deactivate(ctx context.Context, id string) (*model.StockAlert, error) {
	a, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.IsActive = false
	a.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, a); err != nil {
		return nil, apperr.Internal("failed to deactivate alert", err)
	}
	return a, nil
}

func (uc *alertUseCase) GetByID(ctx context.Context, id string) (*model.StockAlert, error) {
	return uc.get(ctx, id)
}

func (uc *alertUseCase) List(ctx context.Context, f *dto.AlertFilters) ([]model.StockAlert, int, error) {
	return uc.repo.List(ctx, f)
}

// Evaluate re-checks every active rule matching the changed inventory row.
// Rules are edge-triggered: entering the condition notifies once, staying
// in it is silent, and leaving it re-arms the rule. Evaluation failures
// are logged and skipped so an alerting problem never fails the inventory
// mutation that triggered it.
func (uc *alertUseCase) Evaluate(ctx context.Context, inv *model.ProductInventory) {
	rules, err := uc.repo.FindByProduct(ctx, inv.ProductID, true)
	if err != nil {
		uc.logger.Error("failed to load alert rules",
			zap.String("product_id", inv.ProductID),
			zap.Error(err),
		)
		return
	}

	now := uc.clock.Now()
	for i := range rules {
		rule := &rules[i]
		if !rule.Matches(inv) {
			continue
		}
		if err := uc.evaluateRule(ctx, rule, inv, now); err != nil {
			uc.logger.Error("failed to evaluate alert rule",
				zap.String("alert_id", rule.ID),
				zap.String("alert_type", string(rule.AlertType)),
				zap.Error(err),
			)
		}
	}
}

func (uc *alertUseCase) evaluateRule(ctx context.Context, rule *model.StockAlert, inv *model.ProductInventory, now time.Time) error {
	current, triggered := measure(rule, inv, now)

	rule.CurrentValue = current
	rule.UpdatedAt = now

	switch {
	case triggered && !rule.NotificationSent:
		rule.NotificationSent = true
		rule.NotifiedAt = &now
		uc.dispatch(rule, inv)
	case !triggered && (rule.NotificationSent || rule.IsAcknowledged):
		// Condition cleared: re-arm for the next occurrence.
		rule.NotificationSent = false
		rule.NotifiedAt = nil
		rule.IsAcknowledged = false
		rule.AcknowledgedBy = nil
		rule.AcknowledgedAt = nil
	}

	if err := uc.repo.Update(ctx, rule); err != nil {
		return err
	}
	return nil
}

// measure computes the observed value and whether the rule condition
// holds. Stock rules observe quantity; expiry rules observe days until
// the inventory's expiry date and never trigger without one.
func measure(rule *model.StockAlert, inv *model.ProductInventory, now time.Time) (current int, triggered bool) {
	switch rule.AlertType {
	case model.AlertLowStock:
		return inv.Quantity, inv.Quantity <= rule.Threshold
	case model.AlertOutOfStock:
		return inv.Quantity, inv.Quantity == 0
	case model.AlertOverstock:
		return inv.Quantity, inv.Quantity >= rule.Threshold
	case model.AlertExpiringSoon:
		if inv.ExpiryDate == nil {
			return 0, false
		}
		days := daysUntil(now, *inv.ExpiryDate)
		return days, days >= 0 && days <= rule.Threshold
	case model.AlertExpired:
		if inv.ExpiryDate == nil {
			return 0, false
		}
		days := daysUntil(now, *inv.ExpiryDate)
		return days, inv.ExpiryDate.Before(now)
	}
	return 0, false
}

// daysUntil is negative for anything already past expiry; plain integer
// truncation would report 0 for stock expired less than a day ago and
// leak it into the expiring-soon window.
func daysUntil(now, expiry time.Time) int {
	days := int(expiry.Sub(now).Hours() / 24)
	if days == 0 && expiry.Before(now) {
		return -1
	}
	return days
}

// dispatch publishes the notification without blocking the caller.
func (uc *alertUseCase) dispatch(rule *model.StockAlert, inv *model.ProductInventory) {
	n := &alert.Notification{
		AlertID:      rule.ID,
		AlertType:    rule.AlertType,
		ProductID:    rule.ProductID,
		WarehouseID:  rule.WarehouseID,
		Threshold:    rule.Threshold,
		CurrentValue: rule.CurrentValue,
		Message:      message(rule, inv),
		Severity:     rule.AlertType.Severity(),
		Channels:     channels(rule.Metadata),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := uc.notifier.Notify(ctx, n); err != nil {
			uc.logger.Warn("failed to dispatch alert notification",
				zap.String("alert_id", n.AlertID),
				zap.String("severity", string(n.Severity)),
				zap.Error(err),
			)
		}
	}()
}

func message(rule *model.StockAlert, inv *model.ProductInventory) string {
	switch rule.AlertType {
	case model.AlertLowStock:
		return fmt.Sprintf("product %s is low on stock: %d units (threshold %d)",
			rule.ProductID, inv.Quantity, rule.Threshold)
	case model.AlertOutOfStock:
		return fmt.Sprintf("product %s is out of stock in warehouse %s",
			rule.ProductID, inv.WarehouseID)
	case model.AlertOverstock:
		return fmt.Sprintf("product %s is overstocked: %d units (threshold %d)",
			rule.ProductID, inv.Quantity, rule.Threshold)
	case model.AlertExpiringSoon:
		return fmt.Sprintf("product %s batch expires in %d days", rule.ProductID, rule.CurrentValue)
	case model.AlertExpired:
		return fmt.Sprintf("product %s batch has expired", rule.ProductID)
	}
	return ""
}

func channels(meta map[string]string) []string {
	var out []string
	if meta[model.AlertMetaChannelEmail] == "true" {
		out = append(out, "email")
	}
	if meta[model.AlertMetaChannelSMS] == "true" {
		out = append(out, "sms")
	}
	if meta[model.AlertMetaChannelWebhook] == "true" {
		out = append(out, "webhook")
	}
	return out
}

func (uc *alertUseCase) get(ctx context.Context, id string) (*model.StockAlert, error) {
	a, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to fetch alert", err)
	}
	if a == nil {
		return nil, apperr.NotFound("alert %s not found", id)
	}
	return a, nil
}
