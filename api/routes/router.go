package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yulishop/storefront/api/controllers"
	"github.com/yulishop/storefront/api/middleware"
	"github.com/yulishop/storefront/internal/storefront"
	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/logger"
)

// NewRouter exposes the order pipeline pages of one storefront client as a
// JSON API for the UI.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pipeline *storefront.Pipeline,
	pingers map[string]func(context.Context) error,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if cfg.Features.ServeMetrics {
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", controllers.SessionGet(pipeline.Session, logg))
			r.Post("/", controllers.SessionLogin(pipeline.Session, logg))
			r.Delete("/", controllers.SessionLogout(pipeline.Session, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(pipeline.Cart, logg))
			r.Delete("/", controllers.CartClear(pipeline.Cart, logg))
			r.Post("/items", controllers.CartAddItem(pipeline.Cart, pipeline.Catalog, logg))
			r.Patch("/items/{lineID}", controllers.CartSetQuantity(pipeline.Cart, logg))
			r.Delete("/items/{lineID}", controllers.CartRemoveItem(pipeline.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutGet(pipeline.Checkout, logg))
			r.Post("/", controllers.CheckoutSubmit(pipeline.Checkout, logg))
		})

		r.Route("/payment", func(r chi.Router) {
			r.Get("/", controllers.PaymentEnter(pipeline.Payment, logg))
			r.Post("/", controllers.PaymentPay(pipeline.Payment, logg))
			r.Get("/status", controllers.PaymentStatus(pipeline.Payment, logg))
			r.Delete("/session", controllers.PaymentLeave(pipeline.Payment, logg))
		})
	})

	return r
}
