package controllers

import (
	"context"
	"net/http"

	"github.com/yulishop/storefront/api/responses"
	"github.com/yulishop/storefront/api/validators"
	"github.com/yulishop/storefront/internal/checkout"
	"github.com/yulishop/storefront/pkg/enums"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/types"
)

// CheckoutService is implemented by checkout.Service.
type CheckoutService interface {
	Enter(ctx context.Context, method enums.ShippingMethod, promoCode string) checkout.Page
	Submit(ctx context.Context, req checkout.Request) (types.PendingOrder, error)
}

type checkoutPageResponse struct {
	Customer types.Customer `json:"customer"`
	Cart     cartResponse   `json:"cart"`
}

type pendingOrderResponse struct {
	types.PendingOrder
	Display displayTotals `json:"display"`
}

// CheckoutGet returns the prefilled form and the live cart totals.
func CheckoutGet(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		method, err := shippingParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page := svc.Enter(r.Context(), method, promoParam(r))
		responses.WriteSuccess(w, checkoutPageResponse{
			Customer: page.Customer,
			Cart:     newCartResponse(page.Cart),
		})
	}
}

// CheckoutSubmit validates the form and hands the pending order to payment.
func CheckoutSubmit(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkout.Request
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Submit(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, pendingOrderResponse{
			PendingOrder: order,
			Display:      formatTotals(order.Totals),
		})
	}
}
