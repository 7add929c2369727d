package services

import (
	"context"
	"strings"
	"time"

	"MusicStoreAPI/internal/model"

	"go.uber.org/zap"
)

// PaymentNotifier forwards a customer's "I have paid" notice to the shop.
type PaymentNotifier interface {
	SendPaymentNotice(ctx context.Context, notice model.PaymentNotice) error
}

// LogNotifier writes notices to the log when no mailer is configured.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) SendPaymentNotice(_ context.Context, notice model.PaymentNotice) error {
	n.Logger.Info("payment notice",
		zap.String("order_number", notice.OrderNumber),
		zap.String("amount_paid", notice.AmountPaid),
		zap.String("email", notice.Email),
	)
	return nil
}

// ConfirmationService backs the confirmation page. Payments are never
// verified: the customer's word is taken for it.
type ConfirmationService struct {
	Orders   *OrderService
	Notifier PaymentNotifier
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewConfirmationService(orders *OrderService, notifier PaymentNotifier, logger *zap.Logger) *ConfirmationService {
	return &ConfirmationService{Orders: orders, Notifier: notifier, Logger: logger, Now: time.Now}
}

// Resolve picks the order to show: the order handed over by checkout, then
// the last order, then the pending order, then a placeholder.
func (s *ConfirmationService) Resolve(ctx context.Context, sessionID string) model.ConfirmationView {
	pending, hasPending := s.Orders.Pending(ctx, sessionID)

	var (
		order  model.OrderRecord
		source model.OrderSource
	)
	if o, ok := s.Orders.TakeHandoff(sessionID); ok {
		order, source = *o, model.OrderSourceHandoff
	} else if o, ok := s.Orders.Last(ctx, sessionID); ok {
		order, source = *o, model.OrderSourceLast
	} else if hasPending {
		order, source = *pending, model.OrderSourcePending
	} else {
		order, source = s.placeholder(), model.OrderSourcePlaceholder
	}

	view := model.ConfirmationView{
		Order:         order,
		Source:        source,
		CanSelfReport: hasPending && IsManualRedirect(pending.PaymentMethod),
	}
	switch {
	case view.CanSelfReport:
		p := pending.Clone()
		view.Pending = &p
		view.Form = model.ConfirmationForm{
			OrderNumber: p.OrderNumber,
			AmountPaid:  FormatAmount(p.Total),
		}
	case source != model.OrderSourcePlaceholder:
		view.Form = model.ConfirmationForm{
			OrderNumber: order.OrderNumber,
			AmountPaid:  FormatAmount(order.Total),
		}
	}
	return view
}

// ConfirmManualPayment records the customer's claim that the manual payment
// went through: the pending order becomes the last order, marked paid.
func (s *ConfirmationService) ConfirmManualPayment(ctx context.Context, sessionID string) (model.ConfirmationView, error) {
	pending, ok := s.Orders.Pending(ctx, sessionID)
	if !ok || !IsManualRedirect(pending.PaymentMethod) {
		return model.ConfirmationView{}, ErrNoPendingOrder
	}

	paid := pending.Clone()
	paid.Status = model.OrderStatusPaidViaPaypal
	s.Orders.SettleOrder(ctx, sessionID, EventOrderPaid, paid)

	s.Logger.Info("manual payment self-reported",
		zap.String("session_id", sessionID),
		zap.String("order_number", paid.OrderNumber),
		zap.Float64("total", paid.Total),
	)

	return model.ConfirmationView{
		Order:     paid,
		Source:    model.OrderSourceLast,
		Submitted: true,
		Form: model.ConfirmationForm{
			OrderNumber: paid.OrderNumber,
			AmountPaid:  FormatAmount(paid.Total),
		},
	}, nil
}

// SubmitPaymentNotice validates the confirmation form and passes it on.
// Delivery problems are logged; the customer still gets a confirmation.
func (s *ConfirmationService) SubmitPaymentNotice(ctx context.Context, sessionID string, form model.ConfirmationForm) (*model.PaymentNotice, error) {
	v := &ValidationError{}
	requireField(v, "name", form.Name)
	requireField(v, "orderNumber", form.OrderNumber)
	requireField(v, "amountPaid", form.AmountPaid)
	if err := validateEmailFormat(form.Email); err != nil {
		v.add("email", err.Error())
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	notice := model.PaymentNotice{
		ConfirmationForm: model.ConfirmationForm{
			Name:        strings.TrimSpace(form.Name),
			Email:       strings.TrimSpace(form.Email),
			OrderNumber: strings.TrimSpace(form.OrderNumber),
			AmountPaid:  strings.TrimSpace(form.AmountPaid),
			Message:     form.Message,
		},
		SessionID:  sessionID,
		ReceivedAt: s.Now().UTC(),
	}
	if err := s.Notifier.SendPaymentNotice(ctx, notice); err != nil {
		s.Logger.Warn("payment notice not delivered",
			zap.String("order_number", notice.OrderNumber),
			zap.Error(err),
		)
	}
	return &notice, nil
}

func (s *ConfirmationService) placeholder() model.OrderRecord {
	return model.OrderRecord{
		OrderNumber: "—",
		Date:        s.Now(),
		Status:      model.OrderStatusAwaitingPayment,
		Items:       []model.OrderItem{},
	}
}
