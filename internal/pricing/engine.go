// Package pricing derives cart totals. Every function is pure; there are no
// failure modes once an Engine is built.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/enums"
	"github.com/yulishop/storefront/pkg/types"
)

// Config holds the business constants the engine applies.
type Config struct {
	FreeShippingThresholdCents int64
	StandardShippingCents      int64
	ExpressShippingCents       int64
	// PromoRates maps a normalised promo code to its discount rate in [0,1].
	PromoRates map[string]decimal.Decimal
}

// DefaultConfig mirrors the storefront's published shipping and promo terms.
func DefaultConfig() Config {
	return Config{
		FreeShippingThresholdCents: 10000,
		StandardShippingCents:      490,
		ExpressShippingCents:       990,
		PromoRates: map[string]decimal.Decimal{
			"WELCOME10": decimal.RequireFromString("0.10"),
		},
	}
}

// ConfigFrom builds an engine config from environment settings.
func ConfigFrom(cfg config.PricingConfig) (Config, error) {
	rates, err := ParsePromoTable(cfg.PromoCodes)
	if err != nil {
		return Config{}, err
	}
	return Config{
		FreeShippingThresholdCents: cfg.FreeShippingThresholdCents,
		StandardShippingCents:      cfg.StandardShippingCents,
		ExpressShippingCents:       cfg.ExpressShippingCents,
		PromoRates:                 rates,
	}, nil
}

// ParsePromoTable reads CODE:rate entries such as "WELCOME10:0.10".
func ParsePromoTable(entries []string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		code, rawRate, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("promo entry %q must be CODE:rate", entry)
		}
		code = NormalizePromoCode(code)
		if code == "" {
			return nil, fmt.Errorf("promo entry %q has an empty code", entry)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(rawRate))
		if err != nil {
			return nil, fmt.Errorf("promo entry %q: %w", entry, err)
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("promo entry %q: rate must be between 0 and 1", entry)
		}
		rates[code] = rate
	}
	return rates, nil
}

// NormalizePromoCode trims and upper-cases user input.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Engine applies a Config.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	rates := make(map[string]decimal.Decimal, len(cfg.PromoRates))
	for code, rate := range cfg.PromoRates {
		rates[NormalizePromoCode(code)] = rate
	}
	cfg.PromoRates = rates
	return &Engine{cfg: cfg}
}

// Subtotal sums unit price times quantity.
func (e *Engine) Subtotal(items []types.CartLine) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotalCents()
	}
	return total
}

// Shipping is free for an empty cart or at or above the threshold, otherwise
// the flat fee for method. Unknown methods are charged as standard.
func (e *Engine) Shipping(items []types.CartLine, method enums.ShippingMethod, subtotal int64) int64 {
	if len(items) == 0 {
		return 0
	}
	if subtotal >= e.cfg.FreeShippingThresholdCents {
		return 0
	}
	if method == enums.ShippingMethodExpress {
		return e.cfg.ExpressShippingCents
	}
	return e.cfg.StandardShippingCents
}

// DiscountRate looks the code up in the promo table. Unknown codes yield 0.
func (e *Engine) DiscountRate(promoCode string) decimal.Decimal {
	code := NormalizePromoCode(promoCode)
	if code == "" {
		return decimal.Zero
	}
	if rate, ok := e.cfg.PromoRates[code]; ok {
		return rate
	}
	return decimal.Zero
}

// KnownPromo reports whether the code maps to a non-zero rate.
func (e *Engine) KnownPromo(promoCode string) bool {
	return e.DiscountRate(promoCode).IsPositive()
}

// Discount is round(subtotal x rate), half away from zero.
func (e *Engine) Discount(subtotal int64, promoCode string) int64 {
	rate := e.DiscountRate(promoCode)
	if rate.IsZero() || subtotal <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).Mul(rate).Round(0).IntPart()
}

// Total is subtotal - discount + shipping, floored at zero.
func (e *Engine) Total(subtotal, shipping, discount int64) int64 {
	total := subtotal - discount + shipping
	if total < 0 {
		return 0
	}
	return total
}

// Quote computes every figure for a cart in one pass.
func (e *Engine) Quote(items []types.CartLine, method enums.ShippingMethod, promoCode string) types.Totals {
	subtotal := e.Subtotal(items)
	shipping := e.Shipping(items, method, subtotal)
	discount := e.Discount(subtotal, promoCode)
	if discount > subtotal {
		discount = subtotal
	}
	return types.Totals{
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		DiscountCents: discount,
		TotalCents:    e.Total(subtotal, shipping, discount),
	}
}
