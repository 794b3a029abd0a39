package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/metrics"
	"github.com/yulishop/storefront/pkg/types"
	"go.uber.org/multierr"
)

// Placer sends a pending order to the backend.
type Placer interface {
	PlaceOrder(ctx context.Context, order types.PendingOrder) (types.PlacedOrder, error)
}

// CartClearer empties the durable cart.
type CartClearer interface {
	Clear(ctx context.Context) error
}

// PendingDiscarder removes the durable pending order.
type PendingDiscarder interface {
	Discard(ctx context.Context) error
}

// Receipt is what the confirmation screen shows. CartCleared is false when
// the order was placed but the local cart could not be emptied.
type Receipt struct {
	OrderID     string `json:"orderId"`
	CartCleared bool   `json:"cartCleared"`
}

type Submitter struct {
	placer  Placer
	cart    CartClearer
	pending PendingDiscarder
	logg    *logger.Logger
	metrics *metrics.PipelineMetrics
	now     func() time.Time
}

func NewSubmitter(placer Placer, cart CartClearer, pending PendingDiscarder, logg *logger.Logger, m *metrics.PipelineMetrics) (*Submitter, error) {
	if placer == nil || cart == nil || pending == nil {
		return nil, fmt.Errorf("placer, cart and pending order store are required")
	}
	return &Submitter{placer: placer, cart: cart, pending: pending, logg: logg, metrics: m, now: time.Now}, nil
}

// Submit places order. On failure nothing local is touched so the shopper can
// retry. On success the cart and the pending order are cleared even if ctx is
// cancelled meanwhile; clear failures are logged and never fail the call,
// since the backend already owns the order.
func (s *Submitter) Submit(ctx context.Context, order types.PendingOrder) (Receipt, error) {
	started := s.now()
	placed, err := s.placer.PlaceOrder(ctx, order)
	if err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeFailed, s.now().Sub(started))
		if s.logg != nil {
			logCtx := s.logg.WithCommitID(ctx, order.CommitID)
			s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "order submission failed")
		}
		return Receipt{}, err
	}
	s.metrics.ObserveSubmission(metrics.OutcomeSucceeded, s.now().Sub(started))

	clearCtx := context.WithoutCancel(ctx)
	cartErr := s.cart.Clear(clearCtx)
	pendingErr := s.pending.Discard(clearCtx)
	if err := multierr.Combine(cartErr, pendingErr); err != nil && s.logg != nil {
		logCtx := s.logg.WithCommitID(clearCtx, order.CommitID)
		logCtx = s.logg.WithOrderID(logCtx, placed.ID)
		s.logg.Error(logCtx, "order placed but local state was not fully cleared", err)
	}
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(s.logg.WithCommitID(ctx, order.CommitID), placed.ID)
		s.logg.Info(logCtx, "order placed")
	}
	return Receipt{OrderID: placed.ID, CartCleared: cartErr == nil}, nil
}
