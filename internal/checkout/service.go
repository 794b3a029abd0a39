// Package checkout turns the cart and the customer form into a pending order.
package checkout

import (
	"context"
	"fmt"

	"github.com/yulishop/storefront/internal/cart"
	"github.com/yulishop/storefront/internal/handoff"
	"github.com/yulishop/storefront/pkg/enums"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/types"
)

// Page is what the checkout screen renders on entry.
type Page struct {
	Customer types.Customer `json:"customer"`
	Cart     cart.Summary   `json:"cart"`
}

// Request is a checkout form submission.
type Request struct {
	Customer       types.Customer `json:"customer"`
	ShippingMethod string         `json:"shippingMethod"`
	PaymentMethod  string         `json:"paymentMethod"`
	PromoCode      string         `json:"promoCode"`
}

type Service struct {
	cart      *cart.Store
	handoff   *handoff.Handoff
	validator *Validator
	logg      *logger.Logger
}

func NewService(cartStore *cart.Store, h *handoff.Handoff, logg *logger.Logger) (*Service, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if h == nil {
		return nil, fmt.Errorf("handoff required")
	}
	return &Service{cart: cartStore, handoff: h, validator: NewValidator(), logg: logg}, nil
}

// Enter loads the cart and prefills the form from the saved profile, or from
// the default customer when none was saved.
func (s *Service) Enter(ctx context.Context, method enums.ShippingMethod, promoCode string) Page {
	s.cart.Load(ctx)
	customer, ok := s.handoff.Profile(ctx)
	if !ok {
		customer = types.DefaultCustomer()
	}
	return Page{Customer: customer, Cart: s.cart.Summarize(method, promoCode)}
}

// Submit validates the form against the current durable cart and commits the
// pending order. Nothing is written when validation fails.
func (s *Service) Submit(ctx context.Context, req Request) (types.PendingOrder, error) {
	method := enums.ShippingMethodStandard
	if req.ShippingMethod != "" {
		parsed, err := enums.ParseShippingMethod(req.ShippingMethod)
		if err != nil {
			return types.PendingOrder{}, pkgerrors.New(pkgerrors.CodeValidation, InvalidFormMessage).
				WithDetails(map[string]string{"shippingMethod": "must be one of standard express"})
		}
		method = parsed
	}
	payment := enums.PaymentMethodCard
	if req.PaymentMethod != "" {
		parsed, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			return types.PendingOrder{}, pkgerrors.New(pkgerrors.CodeValidation, InvalidFormMessage).
				WithDetails(map[string]string{"paymentMethod": "must be one of card cod"})
		}
		payment = parsed
	}

	items := s.cart.Load(ctx)
	if err := s.validator.Validate(req.Customer, items); err != nil {
		return types.PendingOrder{}, err
	}

	summary := s.cart.Summarize(method, req.PromoCode)
	order, err := s.handoff.Commit(ctx, handoff.CommitInput{
		Customer:       req.Customer,
		Items:          summary.Lines,
		ShippingMethod: method,
		PaymentMethod:  payment,
		PromoCode:      summary.PromoCode,
		Totals:         summary.Totals,
	})
	if err != nil {
		return types.PendingOrder{}, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithCommitID(ctx, order.CommitID)
		s.logg.Info(logCtx, "pending order committed")
	}
	return order, nil
}
