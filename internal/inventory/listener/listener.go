// Package listener consumes order events from kafka and deducts sold
// stock. Sales arriving here bypassed the reservation flow (direct POS
// checkout), so they ship available stock immediately.
package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stockward/inventory-service/internal/apperr"
	"github.com/stockward/inventory-service/internal/inventory"
	"github.com/stockward/inventory-service/internal/pkg/broker"
	"go.uber.org/zap"
)

type OrderListener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   *zap.Logger
}

func NewOrderListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, log *zap.Logger) *OrderListener {
	return &OrderListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("starting order event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping order event listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("failed to read order event", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID          string             `json:"id"`
	WarehouseID string             `json:"warehouse_id"`
	Items       []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal order event", zap.Error(err))
		return
	}

	if event.EventType != "OrderCreated" {
		return
	}

	l.logger.Info("processing OrderCreated event", zap.String("order_id", event.Payload.ID))

	for _, item := range event.Payload.Items {
		_, err := l.uc.DeductSale(ctx, item.ProductID, event.Payload.WarehouseID, item.Quantity, event.Payload.ID, "system")
		if err != nil {
			// Insufficient stock on an async sale is an oversell upstream;
			// surface it loudly but keep draining the order.
			l.logger.Error("failed to deduct stock for order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Bool("insufficient_stock", apperr.Is(err, apperr.KindInvariant)),
				zap.Error(err),
			)
		}
	}
}
