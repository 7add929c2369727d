package model

type CheckoutStage string

const (
	StageContact   CheckoutStage = "contact"
	StageShipping  CheckoutStage = "shipping"
	StagePayment   CheckoutStage = "payment"
	StageSubmitted CheckoutStage = "submitted"
)

// CardInfo is only collected for the card method.
type CardInfo struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

type PaymentOption struct {
	ID        PaymentMethod `json:"id"`
	Label     string        `json:"label"`
	Available bool          `json:"available"`
}

// CheckoutView is the read model of a checkout session.
type CheckoutView struct {
	Stage           CheckoutStage   `json:"stage"`
	Items           []CartItem      `json:"items"`
	Pricing         PriceBreakdown  `json:"pricing"`
	Contact         ContactInfo     `json:"contact"`
	BillingAddress  Address         `json:"billingAddress"`
	ShippingAddress Address         `json:"shippingAddress"`
	SameAsBilling   bool            `json:"sameAsBilling"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentOptions  []PaymentOption `json:"paymentOptions"`
	Order           *OrderRecord    `json:"order,omitempty"`
}

// PaymentResult is returned by the payment stage. RedirectURL is set for
// the manual-redirect method and must be opened by the client.
type PaymentResult struct {
	Order       OrderRecord   `json:"order"`
	Stage       CheckoutStage `json:"stage"`
	RedirectURL string        `json:"redirect_url,omitempty"`
}
