package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"MusicStoreAPI/internal/model"
	"MusicStoreAPI/internal/repository"

	"go.uber.org/zap"
)

// OrderService keeps the pending and last order slots of each session.
type OrderService struct {
	Slots  repository.SlotStore
	Events OrderEventPublisher
	Logger *zap.Logger
	Now    func() time.Time

	mu       sync.Mutex
	handoffs map[string]handoff
}

type handoff struct {
	order model.OrderRecord
	at    time.Time
}

func NewOrderService(slots repository.SlotStore, events OrderEventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		Slots:    slots,
		Events:   events,
		Logger:   logger,
		Now:      time.Now,
		handoffs: make(map[string]handoff),
	}
}

// BuildOrder snapshots the checkout into a new order record. The record
// shares no memory with the cart lines it was built from.
func BuildOrder(now time.Time, items []model.CartItem, total float64, method model.PaymentMethod,
	contact model.ContactInfo, billing, shipping model.Address) model.OrderRecord {

	orderItems := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, model.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
			Brand:     it.Brand,
		})
	}

	return model.OrderRecord{
		OrderNumber:     fmt.Sprintf("ORD-%d", now.UnixMilli()),
		Date:            now,
		Total:           RoundAmount(total),
		PaymentMethod:   method,
		Items:           orderItems,
		ShippingAddress: withFullName(shipping),
		BillingAddress:  withFullName(billing),
		Contact:         contact,
	}
}

func withFullName(a model.Address) model.Address {
	a.Name = strings.TrimSpace(a.FirstName + " " + a.LastName)
	return a
}

// SavePending stores o as the order awaiting payment. The pending and last
// order slots are never both filled, so an earlier last order is dropped.
func (s *OrderService) SavePending(ctx context.Context, sessionID string, o model.OrderRecord) {
	s.delete(ctx, repository.SlotKey(sessionID, repository.SlotLastOrder))
	s.save(ctx, repository.SlotKey(sessionID, repository.SlotPendingOrder), o)
	s.publish(ctx, EventOrderPending, sessionID, o)
}

// SettleOrder moves o into the last order slot and empties the pending slot.
func (s *OrderService) SettleOrder(ctx context.Context, sessionID, eventType string, o model.OrderRecord) {
	s.delete(ctx, repository.SlotKey(sessionID, repository.SlotPendingOrder))
	s.save(ctx, repository.SlotKey(sessionID, repository.SlotLastOrder), o)
	s.publish(ctx, eventType, sessionID, o)
}

func (s *OrderService) Pending(ctx context.Context, sessionID string) (*model.OrderRecord, bool) {
	return s.load(ctx, repository.SlotKey(sessionID, repository.SlotPendingOrder))
}

func (s *OrderService) Last(ctx context.Context, sessionID string) (*model.OrderRecord, bool) {
	return s.load(ctx, repository.SlotKey(sessionID, repository.SlotLastOrder))
}

// HandOff passes an order straight to the confirmation page.
func (s *OrderService) HandOff(sessionID string, o model.OrderRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handoffs[sessionID] = handoff{order: o.Clone(), at: s.Now()}
}

// TakeHandoff returns and forgets the order handed to the confirmation page.
func (s *OrderService) TakeHandoff(sessionID string) (*model.OrderRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handoffs[sessionID]
	if !ok {
		return nil, false
	}
	delete(s.handoffs, sessionID)
	return &h.order, true
}

// Sweep drops handoffs the confirmation page never picked up.
func (s *OrderService) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for sid, h := range s.handoffs {
		if h.at.Before(cutoff) {
			delete(s.handoffs, sid)
			n++
		}
	}
	return n
}

func (s *OrderService) save(ctx context.Context, key string, o model.OrderRecord) {
	if err := repository.SaveJSON(ctx, s.Slots, key, o); err != nil {
		s.Logger.Warn("order not saved", zap.String("slot", key), zap.Error(err))
	}
}

func (s *OrderService) delete(ctx context.Context, key string) {
	if err := s.Slots.Delete(ctx, key); err != nil {
		s.Logger.Warn("order slot not cleared", zap.String("slot", key), zap.Error(err))
	}
}

func (s *OrderService) load(ctx context.Context, key string) (*model.OrderRecord, bool) {
	var o model.OrderRecord
	err := repository.LoadJSON(ctx, s.Slots, key, &o)
	if err != nil {
		if !errors.Is(err, repository.ErrSlotNotFound) {
			s.Logger.Warn("ignoring unreadable order", zap.String("slot", key), zap.Error(err))
		}
		return nil, false
	}
	return &o, true
}

func (s *OrderService) publish(ctx context.Context, eventType, sessionID string, o model.OrderRecord) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, newOrderEvent(eventType, sessionID, o)); err != nil {
		s.Logger.Warn("order event not published",
			zap.String("type", eventType),
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	}
}
