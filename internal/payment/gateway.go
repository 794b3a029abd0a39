package payment

import (
	"context"
	"errors"
	"time"

	"github.com/yulishop/storefront/pkg/types"
)

// ErrDeclined is returned by a gateway that refused the authorization.
var ErrDeclined = errors.New("payment declined")

// AuthorizationGateway confirms that a pending order may be charged.
type AuthorizationGateway interface {
	Authorize(ctx context.Context, order types.PendingOrder) error
}

// MockGateway approves every order after Delay, or declines all of them when
// Decline is set. It never reaches a real payment provider.
type MockGateway struct {
	Delay   time.Duration
	Decline bool
}

func (g MockGateway) Authorize(ctx context.Context, _ types.PendingOrder) error {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if g.Decline {
		return ErrDeclined
	}
	return nil
}
