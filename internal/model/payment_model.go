package model

import "time"

// ConfirmationForm is the self-report form shown next to an order awaiting payment.
type ConfirmationForm struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	OrderNumber string `json:"orderNumber"`
	AmountPaid  string `json:"amountPaid"`
	Message     string `json:"message,omitempty"`
}

// OrderSource tells where the displayed order was resolved from.
type OrderSource string

const (
	OrderSourceHandoff     OrderSource = "handoff"
	OrderSourceLast        OrderSource = "lastOrder"
	OrderSourcePending     OrderSource = "pendingOrder"
	OrderSourcePlaceholder OrderSource = "placeholder"
)

// ConfirmationView is what the confirmation page shows. Pending is set
// whenever the self-confirmation control is offered and carries the order
// that control settles, with its payment link.
type ConfirmationView struct {
	Order         OrderRecord      `json:"order"`
	Source        OrderSource      `json:"source"`
	CanSelfReport bool             `json:"canSelfReport"`
	Pending       *OrderRecord     `json:"pending,omitempty"`
	Submitted     bool             `json:"submitted"`
	Form          ConfirmationForm `json:"form"`
}

// PaymentNotice is what a customer sends after paying outside the store.
type PaymentNotice struct {
	ConfirmationForm
	SessionID  string    `json:"-"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// OrderEvent is published whenever an order record changes slot.
type OrderEvent struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	SessionID   string      `json:"session_id"`
	OrderNumber string      `json:"order_number"`
	Status      OrderStatus `json:"status"`
	Total       float64     `json:"total"`
	OccurredAt  time.Time   `json:"occurred_at"`
}
