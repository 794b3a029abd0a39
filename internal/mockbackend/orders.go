// Package mockbackend is the development order and catalog backend the
// storefront talks to when no real one is running.
package mockbackend

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/pagination"
	"github.com/yulishop/storefront/pkg/types"
	"github.com/yulishop/storefront/pkg/validation"
)

// PausedMessage is logged while order intake is switched off; callers see a
// plain 500.
const PausedMessage = "order intake is temporarily paused"

// ReceivedOrder is one order the backend accepted.
type ReceivedOrder struct {
	ID         string             `json:"id"`
	ReceivedAt time.Time          `json:"receivedAt"`
	UserID     string             `json:"userId,omitempty"`
	Order      types.PendingOrder `json:"order"`
}

// OrderBook keeps accepted orders in memory, newest last.
type OrderBook struct {
	logg  *logger.Logger
	now   func() time.Time
	newID func() string

	mu      sync.RWMutex
	orders  []ReceivedOrder
	failing bool
}

func NewOrderBook(failing bool, logg *logger.Logger) *OrderBook {
	return &OrderBook{
		logg:    logg,
		now:     time.Now,
		newID:   uuid.NewString,
		failing: failing,
	}
}

// SetFailing switches order intake off (true) or back on.
func (b *OrderBook) SetFailing(failing bool) {
	b.mu.Lock()
	b.failing = failing
	b.mu.Unlock()
}

// Place validates and records order for userID, which may be empty for
// guest checkouts.
func (b *OrderBook) Place(ctx context.Context, userID string, order types.PendingOrder) (types.PlacedOrder, error) {
	b.mu.RLock()
	failing := b.failing
	b.mu.RUnlock()
	if failing {
		return types.PlacedOrder{}, pkgerrors.New(pkgerrors.CodeInternal, PausedMessage)
	}

	if err := checkOrder(order); err != nil {
		return types.PlacedOrder{}, err
	}

	received := ReceivedOrder{
		ID:         b.newID(),
		ReceivedAt: b.now().UTC(),
		UserID:     userID,
		Order:      order,
	}
	b.mu.Lock()
	b.orders = append(b.orders, received)
	b.mu.Unlock()

	if b.logg != nil {
		ctx = b.logg.WithFields(ctx, map[string]any{
			"order_id":    received.ID,
			"commit_id":   order.CommitID,
			"total_cents": order.Totals.TotalCents,
			"items":       len(order.Items),
		})
		b.logg.Info(ctx, "order received")
	}
	return types.PlacedOrder{ID: received.ID}, nil
}

// List returns up to limit orders, newest first. A non-positive limit
// returns all of them.
func (b *OrderBook) List(limit int) []ReceivedOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.orders)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]ReceivedOrder, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, b.orders[i])
	}
	return out
}

// Page walks the book newest first. The cursor names the last order of the
// previous page; an unknown cursor is a validation error.
func (b *OrderBook) Page(params pagination.Params) (pagination.Page[ReceivedOrder], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[ReceivedOrder]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	b.mu.RLock()
	defer b.mu.RUnlock()

	start := len(b.orders) - 1
	if cursor != nil {
		start = -2
		for i := len(b.orders) - 1; i >= 0; i-- {
			if b.orders[i].ID == cursor.ID && b.orders[i].ReceivedAt.Equal(cursor.CreatedAt) {
				start = i - 1
				break
			}
		}
		if start == -2 {
			return pagination.Page[ReceivedOrder]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
	}

	page := pagination.Page[ReceivedOrder]{Items: make([]ReceivedOrder, 0, limit)}
	i := start
	for ; i >= 0 && len(page.Items) < limit; i-- {
		page.Items = append(page.Items, b.orders[i])
	}
	if i >= 0 {
		last := page.Items[len(page.Items)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.ReceivedAt, ID: last.ID})
	}
	return page, nil
}

// Len is the number of accepted orders.
func (b *OrderBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}

func checkOrder(order types.PendingOrder) error {
	if len(order.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !order.ShippingMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping method").WithDetails(map[string]string{"shippingMethod": string(order.ShippingMethod)})
	}
	if !order.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").WithDetails(map[string]string{"paymentMethod": string(order.PaymentMethod)})
	}
	if err := validation.Default().Struct(order.Customer); err != nil {
		return validation.Format(err, "customer details are incomplete")
	}

	var subtotal int64
	for _, item := range order.Items {
		if item.Quantity < 1 || item.UnitPriceCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "order item is invalid").WithDetails(map[string]string{"sku": item.SKU})
		}
		subtotal += item.LineTotalCents()
	}
	if subtotal != order.Totals.SubtotalCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "subtotal does not match items").WithDetails(map[string]int64{
			"expected": subtotal,
			"received": order.Totals.SubtotalCents,
		})
	}
	if err := order.Totals.Check(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order totals are inconsistent")
	}
	return nil
}
