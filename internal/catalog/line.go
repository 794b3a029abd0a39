package catalog

import (
	"fmt"
	"strings"

	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/types"
)

// PlaceholderImage is used when a perfume has no pictures.
const PlaceholderImage = "/images/placeholder-perfume.jpg"

// Variant returns the variant with sku, or the first one when sku is empty.
// An unknown sku reports false.
func (p Perfume) Variant(sku string) (Variant, bool) {
	if len(p.Variants) == 0 {
		return Variant{}, false
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return p.Variants[0], true
	}
	for _, v := range p.Variants {
		if v.SKU == sku {
			return v, true
		}
	}
	return Variant{}, false
}

// Cover is the first image or the placeholder.
func (p Perfume) Cover() string {
	for _, img := range p.Images {
		if strings.TrimSpace(img) != "" {
			return img
		}
	}
	return PlaceholderImage
}

// NewLine builds a cart line for qty bottles of the chosen variant, limited
// to the variant's stock.
func NewLine(p Perfume, sku string, qty int) (types.CartLine, error) {
	if len(p.Variants) == 0 {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeNotFound, "perfume has no variants").WithDetails(map[string]any{"slug": p.Slug})
	}
	variant, ok := p.Variant(sku)
	if !ok {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found").WithDetails(map[string]any{"slug": p.Slug, "sku": strings.TrimSpace(sku)})
	}
	if variant.Stock <= 0 {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeStateConflict, "variant is out of stock").WithDetails(map[string]any{"sku": variant.SKU})
	}
	if qty < 1 {
		qty = 1
	}
	if qty > variant.Stock {
		qty = variant.Stock
	}

	label := ""
	if variant.VolumeMl > 0 {
		label = fmt.Sprintf("%d ml", variant.VolumeMl)
	}
	return types.CartLine{
		ProductID:      p.ID,
		SKU:            variant.SKU,
		Name:           p.Name,
		Brand:          p.Brand,
		VariantLabel:   label,
		Image:          p.Cover(),
		UnitPriceCents: variant.PriceCents,
		Quantity:       qty,
		MaxQuantity:    variant.Stock,
	}, nil
}
