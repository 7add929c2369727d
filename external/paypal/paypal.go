package paypal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LinkBuilder builds paypal.me links: <base>/<account>/<amount>.
// PayPal never calls back, so there is nothing else to integrate.
type LinkBuilder struct {
	BaseURL string
	Account string
}

func NewLinkBuilder(baseURL, account string) *LinkBuilder {
	return &LinkBuilder{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Account: strings.Trim(account, "/"),
	}
}

// Link returns the payment page for total, formatted with two decimals.
func (b *LinkBuilder) Link(total float64) string {
	return b.BaseURL + "/" + b.Account + "/" + decimal.NewFromFloat(total).StringFixed(2)
}
