package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yulishop/storefront/api/controllers"
	"github.com/yulishop/storefront/api/middleware"
	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/enums"
	"github.com/yulishop/storefront/pkg/logger"
)

// NewMockRouter serves the development order and catalog backend under /api,
// matching the paths the storefront clients call.
func NewMockRouter(
	cfg *config.Config,
	logg *logger.Logger,
	book controllers.OrderIntake,
	source controllers.CatalogSource,
	idempotency middleware.IdempotencyStore,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Get("/health/live", controllers.HealthLive(cfg))

	r.Route("/api", func(r chi.Router) {
		r.Get("/perfumes", controllers.MockListPerfumes(source, logg))
		r.Get("/perfumes/{slug}", controllers.MockGetPerfume(source, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(
				middleware.Auth(cfg.JWT, cfg.Mock.RequireAuth, logg),
				middleware.Idempotency(idempotency, cfg.Mock.IdempotencyTTL, logg),
			).Post("/", controllers.MockPlaceOrder(book, logg))
			r.With(
				middleware.Auth(cfg.JWT, true, logg),
				middleware.RequireRole(enums.AuthRoleAdmin.String(), logg),
			).Get("/", controllers.MockListOrders(book, logg))
		})
	})

	return r
}
