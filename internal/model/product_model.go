package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProductID identifies a catalog product. Catalog clients send it either as
// a JSON string or a JSON number; both decode to the same textual id.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// Product is the catalog object handed to the cart by catalog and detail pages.
// Only ID, Name and Price are required.
type Product struct {
	ID            ProductID `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand,omitempty"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Images        []string  `json:"images,omitempty"`
	Image         string    `json:"image,omitempty"`
	MaxStock      *int      `json:"maxStock,omitempty"`
	InStock       *bool     `json:"inStock,omitempty"`
	Delivery      *string   `json:"delivery,omitempty"`
}
