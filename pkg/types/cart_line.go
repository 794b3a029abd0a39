package types

// DefaultMaxQuantity caps lines whose stock limit is unknown.
const DefaultMaxQuantity = 99

// CartLine is one product variant in the cart. Prices are integer cents.
type CartLine struct {
	ID             string `json:"id"`
	ProductID      string `json:"productId"`
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Brand          string `json:"brand,omitempty"`
	VariantLabel   string `json:"variantLabel,omitempty"`
	Image          string `json:"image,omitempty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	MaxQuantity    int    `json:"maxQuantity"`
}

// Cap returns the effective upper bound for the line quantity.
func (l CartLine) Cap() int {
	if l.MaxQuantity <= 0 {
		return DefaultMaxQuantity
	}
	return l.MaxQuantity
}

// ClampQuantity bounds q into [1, Cap()].
func (l CartLine) ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	if limit := l.Cap(); q > limit {
		return limit
	}
	return q
}

// LineTotalCents is unit price times quantity.
func (l CartLine) LineTotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// CloneLines returns a copy that callers may mutate freely.
func CloneLines(lines []CartLine) []CartLine {
	if len(lines) == 0 {
		return []CartLine{}
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
