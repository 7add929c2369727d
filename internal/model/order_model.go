package model

import "time"

type OrderStatus string

const (
	OrderStatusRedirected      OrderStatus = "Redirected to PayPal"
	OrderStatusProcessing      OrderStatus = "Processing"
	OrderStatusPaidViaPaypal   OrderStatus = "Paid via PayPal"
	OrderStatusCompleted       OrderStatus = "Completed"
	OrderStatusAwaitingPayment OrderStatus = "Awaiting payment"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPaypal PaymentMethod = "paypal"
	PaymentMethodApple  PaymentMethod = "apple"
)

// OrderItem is the snapshot of a cart line stored inside an order.
type OrderItem struct {
	ProductID ProductID `json:"productId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Image     string    `json:"image,omitempty"`
	Brand     string    `json:"brand,omitempty"`
}

type Address struct {
	Name      string `json:"name,omitempty"`
	Country   string `json:"country"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Phone     string `json:"phone,omitempty"`
}

type ContactInfo struct {
	Email      string `json:"email"`
	Newsletter bool   `json:"newsletter"`
}

// OrderRecord is built once at payment submission and persisted as
// either the pending order or the last order.
type OrderRecord struct {
	OrderNumber     string        `json:"orderNumber"`
	Date            time.Time     `json:"date"`
	Total           float64       `json:"total"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Status          OrderStatus   `json:"status"`
	Items           []OrderItem   `json:"items"`
	ShippingAddress Address       `json:"shippingAddress"`
	BillingAddress  Address       `json:"billingAddress"`
	Contact         ContactInfo   `json:"contact"`
	PaypalLink      string        `json:"paypalLink,omitempty"`
}

// Clone returns a deep copy of the record.
func (o OrderRecord) Clone() OrderRecord {
	out := o
	out.Items = append([]OrderItem(nil), o.Items...)
	return out
}
