package controllers

import (
	"context"
	"net/http"

	"github.com/yulishop/storefront/api/responses"
	"github.com/yulishop/storefront/api/validators"
	"github.com/yulishop/storefront/internal/payment"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/types"
)

// PaymentService is implemented by payment.Processor.
type PaymentService interface {
	Enter(ctx context.Context) (types.PendingOrder, payment.Status, error)
	Leave() payment.Status
	Status() payment.Status
	Pay(ctx context.Context, generation uint64, card payment.Card) (payment.Status, error)
}

type paymentPageResponse struct {
	Order  pendingOrderResponse `json:"order"`
	Status payment.Status       `json:"status"`
}

type payRequest struct {
	Generation uint64       `json:"generation"`
	Card       payment.Card `json:"card"`
}

// PaymentEnter opens a payment page instance. Without a pending order the
// response carries PENDING_ORDER_MISSING so the client returns to checkout.
func PaymentEnter(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}
		order, status, err := svc.Enter(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentPageResponse{
			Order:  pendingOrderResponse{PendingOrder: order, Display: formatTotals(order.Totals)},
			Status: status,
		})
	}
}

// PaymentPay runs one payment attempt for the page instance in generation.
// Card field rules are enforced by the processor, not by the body decoder,
// so a bad card still counts as a failed attempt.
func PaymentPay(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var payload payRequest
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.Pay(r.Context(), payload.Generation, payload.Card)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// PaymentLeave abandons the current page instance.
func PaymentLeave(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Leave())
	}
}

// PaymentStatus reports the current page state without starting a new page
// instance.
func PaymentStatus(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Status())
	}
}
