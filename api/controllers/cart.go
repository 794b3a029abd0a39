package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yulishop/storefront/api/responses"
	"github.com/yulishop/storefront/api/validators"
	"github.com/yulishop/storefront/internal/cart"
	"github.com/yulishop/storefront/internal/catalog"
	"github.com/yulishop/storefront/pkg/enums"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/money"
	"github.com/yulishop/storefront/pkg/types"
)

// CartService is the slice of cart.Store the handlers use.
type CartService interface {
	Load(ctx context.Context) []types.CartLine
	Summarize(method enums.ShippingMethod, promoCode string) cart.Summary
	Add(ctx context.Context, line types.CartLine) ([]types.CartLine, error)
	SetQuantity(ctx context.Context, id string, q int) ([]types.CartLine, error)
	Remove(ctx context.Context, id string) ([]types.CartLine, error)
	Clear(ctx context.Context) error
}

// CatalogReader seeds cart lines from the product catalog.
type CatalogReader interface {
	Perfume(ctx context.Context, slug string) (catalog.Perfume, error)
}

type addCartItemRequest struct {
	Line     *types.CartLine `json:"line,omitempty"`
	Slug     string          `json:"slug,omitempty"`
	SKU      string          `json:"sku,omitempty"`
	Quantity int             `json:"quantity,omitempty" validate:"gte=0"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type displayTotals struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

type cartResponse struct {
	cart.Summary
	Display displayTotals `json:"display"`
}

func newCartResponse(summary cart.Summary) cartResponse {
	return cartResponse{
		Summary: summary,
		Display: formatTotals(summary.Totals),
	}
}

func formatTotals(t types.Totals) displayTotals {
	return displayTotals{
		Subtotal: money.Format(t.SubtotalCents),
		Shipping: money.Format(t.ShippingCents),
		Discount: money.Format(t.DiscountCents),
		Total:    money.Format(t.TotalCents),
	}
}

// writeCart summarizes the cart with the shipping and promo query options.
func writeCart(w http.ResponseWriter, r *http.Request, svc CartService, logg *logger.Logger, status int) {
	method, err := shippingParam(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, status, newCartResponse(svc.Summarize(method, promoParam(r))))
}

// CartGet re-reads the durable cart and returns it with totals.
func CartGet(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		svc.Load(r.Context())
		writeCart(w, r, svc, logg, http.StatusOK)
	}
}

// CartAddItem adds either a ready-made line or a catalog variant looked up by
// slug and sku.
func CartAddItem(svc CartService, reader CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := payload.toLine(r.Context(), reader)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := svc.Add(r.Context(), line); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, svc, logg, http.StatusCreated)
	}
}

func (p addCartItemRequest) toLine(ctx context.Context, reader CatalogReader) (types.CartLine, error) {
	if p.Line != nil {
		return *p.Line, nil
	}
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "either line or slug is required").WithDetails(map[string]string{"slug": "is required"})
	}
	if reader == nil {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable")
	}
	perfume, err := reader.Perfume(ctx, slug)
	if err != nil {
		return types.CartLine{}, err
	}
	return catalog.NewLine(perfume, p.SKU, p.Quantity)
}

func CartSetQuantity(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := svc.SetQuantity(r.Context(), chi.URLParam(r, "lineID"), payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, svc, logg, http.StatusOK)
	}
}

func CartRemoveItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		if _, err := svc.Remove(r.Context(), chi.URLParam(r, "lineID")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, svc, logg, http.StatusOK)
	}
}

func CartClear(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		if err := svc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, svc, logg, http.StatusOK)
	}
}
