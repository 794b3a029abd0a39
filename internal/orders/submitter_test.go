package orders

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/metrics"
	"github.com/yulishop/storefront/pkg/types"
)

type stubPlacer struct {
	id    string
	err   error
	calls int
}

func (s *stubPlacer) PlaceOrder(ctx context.Context, order types.PendingOrder) (types.PlacedOrder, error) {
	s.calls++
	if s.err != nil {
		return types.PlacedOrder{}, s.err
	}
	return types.PlacedOrder{ID: s.id}, nil
}

type stubClear struct {
	err    error
	calls  int
	ctxErr error
}

func (s *stubClear) Clear(ctx context.Context) error {
	s.calls++
	s.ctxErr = ctx.Err()
	return s.err
}

func (s *stubClear) Discard(ctx context.Context) error {
	return s.Clear(ctx)
}

func TestSubmitClearsLocalStateOnSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPipelineMetrics(reg)
	placer := &stubPlacer{id: "ord_9"}
	cart := &stubClear{}
	pending := &stubClear{}

	s, err := NewSubmitter(placer, cart, pending, nil, m)
	require.NoError(t, err)

	receipt, err := s.Submit(context.Background(), pendingOrder())
	require.NoError(t, err)
	assert.Equal(t, Receipt{OrderID: "ord_9", CartCleared: true}, receipt)
	assert.Equal(t, 1, cart.calls)
	assert.Equal(t, 1, pending.calls)

	families, err := reg.Gather()
	require.NoError(t, err)
	var succeeded float64
	for _, family := range families {
		if family.GetName() != "order_submissions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == metrics.OutcomeSucceeded {
					succeeded += metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, float64(1), succeeded)
}

func TestSubmitFailureKeepsLocalState(t *testing.T) {
	placer := &stubPlacer{err: newSubmissionError(500, "HTTP 500", nil)}
	cart := &stubClear{}
	pending := &stubClear{}
	s, err := NewSubmitter(placer, cart, pending, nil, nil)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), pendingOrder())
	var subErr *SubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Zero(t, cart.calls)
	assert.Zero(t, pending.calls)
}

func TestSubmitClearFailuresAreLoggedNotReturned(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: buf})
	cart := &stubClear{err: errors.New("disk full")}
	pending := &stubClear{err: errors.New("disk full")}
	s, err := NewSubmitter(&stubPlacer{id: "ord_7"}, cart, pending, logg, nil)
	require.NoError(t, err)

	receipt, err := s.Submit(context.Background(), pendingOrder())
	require.NoError(t, err)
	assert.Equal(t, "ord_7", receipt.OrderID)
	assert.False(t, receipt.CartCleared)
	assert.Equal(t, 1, pending.calls, "pending order discard is attempted even after the cart clear failed")
	assert.Contains(t, buf.String(), "order placed but local state was not fully cleared")
	assert.Contains(t, buf.String(), `"order_id":"ord_7"`)
}

func TestSubmitClearsDespiteCancelledContext(t *testing.T) {
	cart := &stubClear{}
	pending := &stubClear{}
	s, err := NewSubmitter(&stubPlacer{id: "ord_1"}, cart, pending, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Submit(ctx, pendingOrder())
	require.NoError(t, err)
	assert.NoError(t, cart.ctxErr)
	assert.NoError(t, pending.ctxErr)
}

func TestNewSubmitterRequiresCollaborators(t *testing.T) {
	_, err := NewSubmitter(nil, &stubClear{}, &stubClear{}, nil, nil)
	assert.Error(t, err)
}
