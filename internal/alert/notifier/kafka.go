// Package notifier ships the kafka-backed alert notification transport.
// Messages are keyed by product so consumers see per-product ordering.
package notifier

import (
	"context"
	"encoding/json"

	"github.com/stockward/inventory-service/internal/alert"
	"github.com/stockward/inventory-service/internal/pkg/broker"
)

type KafkaNotifier struct {
	producer *broker.KafkaProducer
}

func NewKafkaNotifier(producer *broker.KafkaProducer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) Notify(ctx context.Context, notification *alert.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	return n.producer.Publish(ctx, []byte(notification.ProductID), payload)
}

// NopNotifier discards notifications. Used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, *alert.Notification) error { return nil }
