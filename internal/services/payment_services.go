package services

import (
	"MusicStoreAPI/internal/model"
)

// PaymentLinker builds the external page the customer pays on.
type PaymentLinker interface {
	Link(total float64) string
}

type PaymentService struct {
	Links   PaymentLinker
	options []model.PaymentOption
}

func NewPaymentService(links PaymentLinker) *PaymentService {
	return &PaymentService{
		Links: links,
		// only the manual PayPal redirect is available for now
		options: []model.PaymentOption{
			{ID: model.PaymentMethodCard, Label: "Credit card", Available: false},
			{ID: model.PaymentMethodPaypal, Label: "PayPal", Available: true},
			{ID: model.PaymentMethodApple, Label: "Apple Pay", Available: false},
		},
	}
}

func (s *PaymentService) Options() []model.PaymentOption {
	return append([]model.PaymentOption(nil), s.options...)
}

// IsAvailable reports whether m can be selected.
func (s *PaymentService) IsAvailable(m model.PaymentMethod) bool {
	for _, o := range s.options {
		if o.ID == m {
			return o.Available
		}
	}
	return false
}

// SetAvailable switches a method on or off.
func (s *PaymentService) SetAvailable(m model.PaymentMethod, available bool) {
	for i := range s.options {
		if s.options[i].ID == m {
			s.options[i].Available = available
		}
	}
}

// IsManualRedirect reports whether m is paid outside the store and confirmed by the customer.
func IsManualRedirect(m model.PaymentMethod) bool {
	return m == model.PaymentMethodPaypal
}

func (s *PaymentService) RedirectURL(total float64) string {
	return s.Links.Link(total)
}
