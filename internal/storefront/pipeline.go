// Package storefront wires the order pipeline together from configuration.
package storefront

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yulishop/storefront/internal/auth"
	"github.com/yulishop/storefront/internal/cart"
	"github.com/yulishop/storefront/internal/catalog"
	"github.com/yulishop/storefront/internal/checkout"
	"github.com/yulishop/storefront/internal/clientstore"
	"github.com/yulishop/storefront/internal/handoff"
	"github.com/yulishop/storefront/internal/orders"
	"github.com/yulishop/storefront/internal/payment"
	"github.com/yulishop/storefront/internal/pricing"
	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/metrics"
)

// Pipeline holds one client's view of the order pipeline.
type Pipeline struct {
	Engine    *pricing.Engine
	Cart      *cart.Store
	Catalog   *catalog.Client
	Session   *auth.Session
	Handoff   *handoff.Handoff
	Checkout  *checkout.Service
	Orders    *orders.Client
	Submitter *orders.Submitter
	Payment   *payment.Processor
	Metrics   *metrics.PipelineMetrics
}

// Options overrides collaborators, mostly for tests.
type Options struct {
	Gateway    payment.AuthorizationGateway
	HTTPClient *http.Client
}

// Build assembles the pipeline over store.
func Build(ctx context.Context, cfg *config.Config, store clientstore.Store, logg *logger.Logger, m *metrics.PipelineMetrics, opts Options) (*Pipeline, error) {
	if cfg == nil || store == nil {
		return nil, fmt.Errorf("config and client store are required")
	}

	pricingCfg, err := pricing.ConfigFrom(cfg.Pricing)
	if err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	engine := pricing.NewEngine(pricingCfg)

	cartStore, err := cart.NewStore(ctx, store, engine, cart.WithLogger(logg), cart.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	catalogClient, err := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, opts.HTTPClient)
	if err != nil {
		cartStore.Close()
		return nil, err
	}
	session := auth.NewSession(store, logg)
	h, err := handoff.New(store, logg)
	if err != nil {
		cartStore.Close()
		return nil, err
	}
	checkoutSvc, err := checkout.NewService(cartStore, h, logg)
	if err != nil {
		cartStore.Close()
		return nil, err
	}
	ordersClient, err := orders.NewClient(cfg.Orders, session, opts.HTTPClient)
	if err != nil {
		cartStore.Close()
		return nil, err
	}
	submitter, err := orders.NewSubmitter(ordersClient, cartStore, h, logg, m)
	if err != nil {
		cartStore.Close()
		return nil, err
	}

	gateway := opts.Gateway
	if gateway == nil {
		gateway = payment.MockGateway{Delay: cfg.Payment.MockDelay, Decline: cfg.Payment.MockDecline}
	}
	processor, err := payment.NewProcessor(h, gateway, submitter, logg, m)
	if err != nil {
		cartStore.Close()
		return nil, err
	}

	return &Pipeline{
		Engine:    engine,
		Cart:      cartStore,
		Catalog:   catalogClient,
		Session:   session,
		Handoff:   h,
		Checkout:  checkoutSvc,
		Orders:    ordersClient,
		Submitter: submitter,
		Payment:   processor,
		Metrics:   m,
	}, nil
}

// Close stops following external store changes.
func (p *Pipeline) Close() {
	if p != nil && p.Cart != nil {
		p.Cart.Close()
	}
}
