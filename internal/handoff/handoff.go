// Package handoff owns the pending order passed from checkout to payment.
// Commit is the only place a pending order is created; Discard is only called
// once the order backend has accepted it.
package handoff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yulishop/storefront/internal/clientstore"
	"github.com/yulishop/storefront/pkg/enums"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/types"
)

// CommitInput is everything checkout has validated.
type CommitInput struct {
	Customer       types.Customer
	Items          []types.CartLine
	ShippingMethod enums.ShippingMethod
	PaymentMethod  enums.PaymentMethod
	PromoCode      string
	Totals         types.Totals
}

// Handoff reads and writes the pendingOrder and customerProfile keys.
type Handoff struct {
	pending *clientstore.Slot[types.PendingOrder]
	profile *clientstore.Slot[types.Customer]
	logg    *logger.Logger
	now     func() time.Time
	newID   func() string
}

func New(store clientstore.Store, logg *logger.Logger) (*Handoff, error) {
	if store == nil {
		return nil, fmt.Errorf("client store required")
	}
	return &Handoff{
		pending: clientstore.NewSlot[types.PendingOrder](store, clientstore.KeyPendingOrder, logg),
		profile: clientstore.NewSlot[types.Customer](store, clientstore.KeyCustomerProfile, logg),
		logg:    logg,
		now:     time.Now,
		newID:   uuid.NewString,
	}, nil
}

// Commit replaces any pending order with a new one built from in. When the
// customer asked to save their details the profile is written afterwards; a
// failed profile write is logged and does not undo the commit.
func (h *Handoff) Commit(ctx context.Context, in CommitInput) (types.PendingOrder, error) {
	if len(in.Items) == 0 {
		return types.PendingOrder{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !in.ShippingMethod.IsValid() {
		return types.PendingOrder{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping method").
			WithDetails(map[string]any{"shippingMethod": in.ShippingMethod})
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = enums.PaymentMethodCard
	}
	if !in.PaymentMethod.IsValid() {
		return types.PendingOrder{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]any{"paymentMethod": in.PaymentMethod})
	}
	if err := in.Totals.Check(); err != nil {
		return types.PendingOrder{}, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "totals are inconsistent")
	}

	order := types.PendingOrder{
		CommitID:       h.newID(),
		CreatedAt:      h.now().UTC(),
		Customer:       in.Customer,
		Items:          types.CloneLines(in.Items),
		ShippingMethod: in.ShippingMethod,
		PaymentMethod:  in.PaymentMethod,
		PromoCode:      strings.TrimSpace(in.PromoCode),
		Totals:         in.Totals,
	}
	if err := h.pending.Save(ctx, order); err != nil {
		return types.PendingOrder{}, err
	}

	if in.Customer.SaveInfo {
		if err := h.profile.Save(ctx, in.Customer); err != nil && h.logg != nil {
			logCtx := h.logg.WithCommitID(ctx, order.CommitID)
			logCtx = h.logg.WithField(logCtx, "error", err.Error())
			h.logg.Warn(logCtx, "customer profile not saved")
		}
	}
	return order, nil
}

// Peek returns the pending order without consuming it. An absent, malformed or
// item-less record is reported as CodePendingOrderMissing.
func (h *Handoff) Peek(ctx context.Context) (types.PendingOrder, error) {
	order, ok := h.pending.Load(ctx)
	if !ok || len(order.Items) == 0 {
		return types.PendingOrder{}, pkgerrors.New(pkgerrors.CodePendingOrderMissing, "no pending order, return to checkout")
	}
	return order, nil
}

// Discard removes the pending order.
func (h *Handoff) Discard(ctx context.Context) error {
	return h.pending.Clear(ctx)
}

// Profile returns the saved customer, if any.
func (h *Handoff) Profile(ctx context.Context) (types.Customer, bool) {
	return h.profile.Load(ctx)
}
