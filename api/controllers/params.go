package controllers

import (
	"net/http"
	"strings"

	"github.com/yulishop/storefront/api/validators"
	"github.com/yulishop/storefront/pkg/enums"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
)

const maxPromoCodeLength = 32

// shippingParam reads ?shipping=, defaulting to standard.
func shippingParam(r *http.Request) (enums.ShippingMethod, error) {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("shipping")))
	if raw == "" {
		return enums.ShippingMethodStandard, nil
	}
	method, err := enums.ParseShippingMethod(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping method").WithDetails(map[string]any{"field": "shipping"})
	}
	return method, nil
}

func promoParam(r *http.Request) string {
	return validators.SanitizeString(r.URL.Query().Get("promo"), maxPromoCodeLength)
}
