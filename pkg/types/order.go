package types

import (
	"fmt"
	"time"

	"github.com/yulishop/storefront/pkg/enums"
)

// Totals is derived from a cart and never stored on its own.
type Totals struct {
	SubtotalCents int64 `json:"subtotalCents"`
	ShippingCents int64 `json:"shippingCents"`
	DiscountCents int64 `json:"discountCents"`
	TotalCents    int64 `json:"totalCents"`
}

// Check verifies total = subtotal - discount + shipping with no negative parts.
func (t Totals) Check() error {
	if t.SubtotalCents < 0 || t.ShippingCents < 0 || t.DiscountCents < 0 || t.TotalCents < 0 {
		return fmt.Errorf("totals must be non-negative: %+v", t)
	}
	if want := t.SubtotalCents - t.DiscountCents + t.ShippingCents; want != t.TotalCents {
		return fmt.Errorf("total %d does not match subtotal %d - discount %d + shipping %d", t.TotalCents, t.SubtotalCents, t.DiscountCents, t.ShippingCents)
	}
	return nil
}

// PendingOrder is the validated, not yet paid snapshot handed from checkout to payment.
type PendingOrder struct {
	CommitID       string               `json:"commitId"`
	CreatedAt      time.Time            `json:"createdAt"`
	Customer       Customer             `json:"customer"`
	Items          []CartLine           `json:"items"`
	ShippingMethod enums.ShippingMethod `json:"shippingMethod"`
	PaymentMethod  enums.PaymentMethod  `json:"paymentMethod"`
	PromoCode      string               `json:"promoCode,omitempty"`
	Totals         Totals               `json:"totals"`
}

// PlacedOrder is what the order backend returns on success.
type PlacedOrder struct {
	ID string `json:"id"`
}
