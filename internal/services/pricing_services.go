package services

import (
	"strings"

	"MusicStoreAPI/internal/model"

	"github.com/shopspring/decimal"
)

const (
	CouponCode            = "MUSIC10"
	CouponRate            = 0.10
	FreeShippingThreshold = 500.0
	ShippingFee           = 29.0
	TaxRate               = 0.03

	msgInvalidCoupon = "Invalid promo code"
)

// CalculatePrice derives the order totals from the cart lines.
// Amounts keep float64 precision; round only for display.
func CalculatePrice(items []model.CartItem, couponApplied bool) model.PriceBreakdown {
	var subtotal, saved float64
	for _, it := range items {
		q := float64(it.Quantity)
		subtotal += it.Price * q
		if it.OriginalPrice != nil {
			saved += (*it.OriginalPrice - it.Price) * q
		}
	}

	var discount float64
	if couponApplied {
		discount = subtotal * CouponRate
	}

	// shipping is charged on an empty cart too
	shipping := ShippingFee
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}

	tax := (subtotal - discount) * TaxRate

	return model.PriceBreakdown{
		Subtotal:    subtotal,
		Discount:    discount,
		Shipping:    shipping,
		Tax:         tax,
		Total:       subtotal - discount + shipping + tax,
		SavedAmount: saved,
	}
}

// FreeShippingRemaining is how much more the customer must spend to ship for free.
func FreeShippingRemaining(subtotal float64) float64 {
	if subtotal < FreeShippingThreshold {
		return FreeShippingThreshold - subtotal
	}
	return 0
}

// ApplyCoupon returns the coupon state after trying code.
// Once a coupon is applied any further attempt leaves the state untouched.
func ApplyCoupon(state model.CouponState, code string) model.CouponState {
	if state.Applied {
		return state
	}
	code = strings.TrimSpace(code)
	if code != "" && strings.ToUpper(code) == CouponCode {
		return model.CouponState{Code: CouponCode, Applied: true}
	}
	state.Error = msgInvalidCoupon
	return state
}

// FormatAmount renders v with two decimals.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// RoundAmount rounds v to cents.
func RoundAmount(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
