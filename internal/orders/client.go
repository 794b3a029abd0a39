// Package orders talks to the order backend and performs the terminal clears
// once an order is accepted.
package orders

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker/v2"
	"github.com/yulishop/storefront/pkg/config"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/httpclient"
	"github.com/yulishop/storefront/pkg/types"
	"golang.org/x/crypto/blake2b"
)

// IdempotencyHeader carries a digest of the submitted payload so a retried
// commit is recognisable by the backend.
const IdempotencyHeader = "Idempotency-Key"

// Authorizer attaches credentials to an outgoing request.
type Authorizer interface {
	Authorize(ctx context.Context, req *http.Request)
}

// Client submits pending orders to POST {base}/orders.
type Client struct {
	endpoint   string
	http       *http.Client
	breaker    *gobreaker.CircuitBreaker[types.PlacedOrder]
	authorizer Authorizer
}

// NewClient builds a client guarded by a circuit breaker that opens after
// cfg.BreakerMaxFailures consecutive transport or 5xx failures.
func NewClient(cfg config.OrdersConfig, authorizer Authorizer, httpClient *http.Client) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("orders base url required")
	}
	if httpClient == nil {
		httpClient = httpclient.New(cfg.Timeout)
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	breaker := gobreaker.NewCircuitBreaker[types.PlacedOrder](gobreaker.Settings{
		Name:    "order-backend",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var subErr *SubmissionError
			return errors.As(err, &subErr) && subErr.clientFault()
		},
	})
	return &Client{
		endpoint:   httpclient.JoinURL(base, "orders"),
		http:       httpClient,
		breaker:    breaker,
		authorizer: authorizer,
	}, nil
}

// PlaceOrder sends the full pending order and returns the backend's id.
// Transport and backend failures are reported as *SubmissionError.
func (c *Client) PlaceOrder(ctx context.Context, order types.PendingOrder) (types.PlacedOrder, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return types.PlacedOrder{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode pending order")
	}

	placed, err := c.breaker.Execute(func() (types.PlacedOrder, error) {
		return c.post(ctx, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.PlacedOrder{}, newSubmissionError(0, "order service is temporarily unavailable, please try again shortly", err)
	}
	return placed, err
}

func (c *Client) post(ctx context.Context, body []byte) (types.PlacedOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return types.PlacedOrder{}, newSubmissionError(0, "could not build order request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(IdempotencyHeader, IdempotencyKey(body))
	if c.authorizer != nil {
		c.authorizer.Authorize(ctx, req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return types.PlacedOrder{}, newSubmissionError(0, "order service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.PlacedOrder{}, newSubmissionError(resp.StatusCode, "could not read order response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.PlacedOrder{}, newSubmissionError(resp.StatusCode, httpclient.ErrorMessage(resp.StatusCode, raw), nil)
	}

	var placed types.PlacedOrder
	if err := json.Unmarshal(raw, &placed); err != nil {
		return types.PlacedOrder{}, newSubmissionError(resp.StatusCode, "order response is not valid JSON", err)
	}
	if strings.TrimSpace(placed.ID) == "" {
		return types.PlacedOrder{}, newSubmissionError(resp.StatusCode, "order response has no id", nil)
	}
	return placed, nil
}

// IdempotencyKey is the hex BLAKE2b-256 digest of the encoded pending order.
func IdempotencyKey(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}
