package services

import (
	"context"
	"time"

	"MusicStoreAPI/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventOrderPending   = "order_pending"
	EventOrderPaid      = "order_paid"
	EventOrderCompleted = "order_completed"
)

// OrderEventPublisher fans order lifecycle changes out to other systems.
type OrderEventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// LogPublisher only logs events. Used when no broker is configured.
type LogPublisher struct {
	Logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{Logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event model.OrderEvent) error {
	p.Logger.Info("order event",
		zap.String("type", event.Type),
		zap.String("order_number", event.OrderNumber),
		zap.String("status", string(event.Status)),
		zap.Float64("total", event.Total),
	)
	return nil
}

func newOrderEvent(eventType, sessionID string, o model.OrderRecord) model.OrderEvent {
	return model.OrderEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		SessionID:   sessionID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Total:       o.Total,
		OccurredAt:  time.Now().UTC(),
	}
}
