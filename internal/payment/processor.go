// Package payment runs one payment attempt at a time against the pending
// order: card checks, authorization, then order submission.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/yulishop/storefront/internal/orders"
	"github.com/yulishop/storefront/pkg/enums"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/metrics"
	"github.com/yulishop/storefront/pkg/types"
	"github.com/yulishop/storefront/pkg/validation"
)

const (
	declinedMessage = "Payment was declined. Please try another card."
	failedMessage   = "Payment failed. Please try again."
)

// PendingSource reads the pending order without consuming it.
type PendingSource interface {
	Peek(ctx context.Context) (types.PendingOrder, error)
}

// OrderSubmitter places the order and performs the terminal clears.
type OrderSubmitter interface {
	Submit(ctx context.Context, order types.PendingOrder) (orders.Receipt, error)
}

// Status is the payment page state.
type Status struct {
	State       enums.PaymentState `json:"state"`
	Message     string             `json:"message,omitempty"`
	OrderID     string             `json:"orderId,omitempty"`
	CartCleared bool               `json:"cartCleared,omitempty"`
	Generation  uint64             `json:"generation"`
}

// Processor is the payment state machine for one client. The in-flight latch
// rejects a second Pay while one is running; the generation counter is bumped
// whenever the payment page is entered or left, and an attempt that started
// under an older generation never writes state.
type Processor struct {
	pending   PendingSource
	gateway   AuthorizationGateway
	submitter OrderSubmitter
	validate  *validator.Validate
	logg      *logger.Logger
	metrics   *metrics.PipelineMetrics

	mu         sync.Mutex
	status     Status
	generation uint64
	inFlight   bool
}

func NewProcessor(pending PendingSource, gateway AuthorizationGateway, submitter OrderSubmitter, logg *logger.Logger, m *metrics.PipelineMetrics) (*Processor, error) {
	if pending == nil || gateway == nil || submitter == nil {
		return nil, fmt.Errorf("pending source, gateway and submitter are required")
	}
	return &Processor{
		pending:   pending,
		gateway:   gateway,
		submitter: submitter,
		validate:  validation.Default(),
		logg:      logg,
		metrics:   m,
		status:    Status{State: enums.PaymentStateIdle},
	}, nil
}

// Enter starts a new page instance and returns the pending order to pay for.
// A missing order yields CodePendingOrderMissing; the generation is bumped
// either way. An attempt abandoned by an earlier instance still holds the
// latch, so Pay on the new instance returns CodeConflict until it settles.
func (p *Processor) Enter(ctx context.Context) (types.PendingOrder, Status, error) {
	p.mu.Lock()
	p.generation++
	if !p.inFlight {
		p.status = Status{State: enums.PaymentStateIdle}
	}
	p.status.Generation = p.generation
	status := p.status
	p.mu.Unlock()

	order, err := p.pending.Peek(ctx)
	return order, status, err
}

// Leave abandons the current page instance. A running attempt keeps going but
// its outcome is no longer recorded.
func (p *Processor) Leave() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.status.Generation = p.generation
	return p.status
}

// Status returns the current page state.
func (p *Processor) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Pay runs one attempt. generation must be the value returned by Enter;
// zero means the current page instance.
func (p *Processor) Pay(ctx context.Context, generation uint64, card Card) (Status, error) {
	gen, err := p.begin(generation)
	if err != nil {
		p.metrics.IncPaymentAttempt(metrics.OutcomeBusy)
		return p.Status(), err
	}
	defer p.release()

	order, err := p.pending.Peek(ctx)
	if err != nil {
		return p.fail(ctx, gen, metrics.OutcomeFailed, err.Error(), err)
	}
	logCtx := ctx
	if p.logg != nil {
		logCtx = p.logg.WithCommitID(ctx, order.CommitID)
	}

	if order.PaymentMethod != enums.PaymentMethodCOD {
		if err := validateCard(p.validate, card); err != nil {
			return p.fail(logCtx, gen, metrics.OutcomeInvalid, InvalidCardMessage, err)
		}
	}

	if !p.advance(gen, enums.PaymentStateConfirming) {
		return p.abandoned(logCtx)
	}
	if err := p.gateway.Authorize(ctx, order); err != nil {
		if errors.Is(err, ErrDeclined) {
			return p.fail(logCtx, gen, metrics.OutcomeDeclined, declinedMessage,
				pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, declinedMessage))
		}
		return p.fail(logCtx, gen, metrics.OutcomeFailed, failedMessage,
			pkgerrors.Wrap(pkgerrors.CodeDependency, err, "authorize payment"))
	}

	if !p.advance(gen, enums.PaymentStateSubmitting) {
		return p.abandoned(logCtx)
	}
	receipt, err := p.submitter.Submit(ctx, order)
	if err != nil {
		msg := failedMessage
		var subErr *orders.SubmissionError
		if errors.As(err, &subErr) && subErr.Message != "" {
			msg = subErr.Message
		}
		return p.fail(logCtx, gen, metrics.OutcomeFailed, msg, err)
	}

	p.metrics.IncPaymentAttempt(metrics.OutcomeSucceeded)
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		// the order is placed; only the page state belongs to someone else now
		return Status{State: enums.PaymentStateSucceeded, OrderID: receipt.OrderID, CartCleared: receipt.CartCleared, Generation: gen}, nil
	}
	p.status = Status{
		State:       enums.PaymentStateSucceeded,
		OrderID:     receipt.OrderID,
		CartCleared: receipt.CartCleared,
		Generation:  gen,
	}
	return p.status, nil
}

func (p *Processor) begin(generation uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight {
		return 0, pkgerrors.New(pkgerrors.CodeConflict, "a payment is already in progress")
	}
	if generation != 0 && generation != p.generation {
		return 0, pkgerrors.New(pkgerrors.CodeConflict, "payment page is out of date, reload it").
			WithDetails(map[string]any{"generation": p.generation})
	}
	p.inFlight = true
	p.status = Status{State: enums.PaymentStateValidating, Generation: p.generation}
	return p.generation, nil
}

func (p *Processor) release() {
	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()
}

// advance moves to next unless the page instance has changed.
func (p *Processor) advance(gen uint64, next enums.PaymentState) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return false
	}
	p.status.State = next
	return true
}

func (p *Processor) fail(ctx context.Context, gen uint64, outcome, msg string, err error) (Status, error) {
	p.metrics.IncPaymentAttempt(outcome)
	if p.logg != nil {
		p.logg.Warn(p.logg.WithFields(ctx, map[string]any{"outcome": outcome, "error": err.Error()}), "payment attempt failed")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	status := Status{State: enums.PaymentStateFailed, Message: msg, Generation: gen}
	if gen == p.generation {
		p.status = status
	}
	return status, err
}

func (p *Processor) abandoned(ctx context.Context) (Status, error) {
	p.metrics.IncPaymentAttempt(metrics.OutcomeAbandoned)
	if p.logg != nil {
		p.logg.Info(ctx, "payment attempt abandoned, pending order kept")
	}
	return p.Status(), pkgerrors.New(pkgerrors.CodeStateConflict, "payment page was left before the attempt finished")
}
