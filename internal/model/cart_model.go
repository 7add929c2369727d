package model

// CartItem is one line of the cart, keyed by ProductID.
// Display fields and prices are copied from the product when it is added
// and are never re-synced with the catalog.
type CartItem struct {
	ProductID     ProductID `json:"productId"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand,omitempty"`
	Image         string    `json:"image,omitempty"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Quantity      int       `json:"quantity"`
	MaxStock      int       `json:"maxStock"`
	InStock       bool      `json:"inStock"`
	Delivery      string    `json:"delivery,omitempty"`
}

// Clone returns a copy that shares no pointers with i.
func (i CartItem) Clone() CartItem {
	out := i
	if i.OriginalPrice != nil {
		op := *i.OriginalPrice
		out.OriginalPrice = &op
	}
	return out
}

// CouponState tracks the single promo code a cart may carry.
type CouponState struct {
	Code    string `json:"code,omitempty"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// PriceBreakdown is derived from the cart on every read and never stored.
type PriceBreakdown struct {
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	Shipping    float64 `json:"shipping"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
	SavedAmount float64 `json:"savedAmount"`
}

// CartResponse is returned when calling GET /storefront/cart
type CartResponse struct {
	Items                 []CartItem     `json:"items"`
	Pricing               PriceBreakdown `json:"pricing"`
	Coupon                CouponState    `json:"coupon"`
	FreeShippingRemaining float64        `json:"freeShippingRemaining"`
	MaxStockReached       []ProductID    `json:"maxStockReached"`
}
