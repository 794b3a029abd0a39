package mockbackend

import (
	"sort"
	"strings"

	"github.com/yulishop/storefront/internal/catalog"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
)

// Catalog serves a fixed set of perfumes keyed by slug.
type Catalog struct {
	bySlug map[string]catalog.Perfume
	slugs  []string
}

func NewCatalog(perfumes ...catalog.Perfume) *Catalog {
	c := &Catalog{bySlug: make(map[string]catalog.Perfume, len(perfumes))}
	for _, p := range perfumes {
		slug := strings.TrimSpace(p.Slug)
		if slug == "" {
			continue
		}
		if _, exists := c.bySlug[slug]; !exists {
			c.slugs = append(c.slugs, slug)
		}
		c.bySlug[slug] = p
	}
	sort.Strings(c.slugs)
	return c
}

// DefaultCatalog is the fixture set used by cmd/orders-mock.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		catalog.Perfume{
			ID:          "p1",
			Name:        "Ambre Nuit",
			Slug:        "ambre-nuit",
			Brand:       "Maison Yuli",
			Description: "Amber, labdanum and a trace of smoked vanilla.",
			Images:      []string{"/images/ambre-nuit.jpg"},
			Variants: []catalog.Variant{
				{SKU: "P1-50", VolumeMl: 50, PriceCents: 7900, Stock: 6},
				{SKU: "P1-100", VolumeMl: 100, PriceCents: 12900, Stock: 3},
			},
		},
		catalog.Perfume{
			ID:          "p2",
			Name:        "Fleur de Sel",
			Slug:        "fleur-de-sel",
			Brand:       "Maison Yuli",
			Description: "Sea salt, neroli and white musk.",
			Images:      []string{"/images/fleur-de-sel.jpg"},
			Variants: []catalog.Variant{
				{SKU: "P2-30", VolumeMl: 30, PriceCents: 4500, Stock: 10},
				{SKU: "P2-75", VolumeMl: 75, PriceCents: 8900, Stock: 0},
			},
		},
		catalog.Perfume{
			ID:     "p3",
			Name:   "Cuir Blanc",
			Slug:   "cuir-blanc",
			Brand:  "Atelier Nord",
			Images: nil,
			Variants: []catalog.Variant{
				{SKU: "P3-100", VolumeMl: 100, PriceCents: 15500, Stock: 2},
			},
		},
	)
}

// Perfume returns the perfume with slug.
func (c *Catalog) Perfume(slug string) (catalog.Perfume, error) {
	p, ok := c.bySlug[strings.TrimSpace(slug)]
	if !ok {
		return catalog.Perfume{}, pkgerrors.New(pkgerrors.CodeNotFound, "perfume not found").WithDetails(map[string]any{"slug": slug})
	}
	return p, nil
}

// List returns up to limit perfumes ordered by slug.
func (c *Catalog) List(limit int) []catalog.Perfume {
	if limit <= 0 || limit > len(c.slugs) {
		limit = len(c.slugs)
	}
	out := make([]catalog.Perfume, 0, limit)
	for _, slug := range c.slugs[:limit] {
		out = append(out, c.bySlug[slug])
	}
	return out
}
