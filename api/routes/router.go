package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvaldes-dev/storecraft-backend/api/controllers"
	webhookcontrollers "github.com/mvaldes-dev/storecraft-backend/api/controllers/webhooks"
	"github.com/mvaldes-dev/storecraft-backend/api/middleware"
	"github.com/mvaldes-dev/storecraft-backend/internal/basket"
	"github.com/mvaldes-dev/storecraft-backend/internal/catalog"
	"github.com/mvaldes-dev/storecraft-backend/internal/orders"
	"github.com/mvaldes-dev/storecraft-backend/internal/payments"
	stripewebhook "github.com/mvaldes-dev/storecraft-backend/internal/webhooks/stripe"
	"github.com/mvaldes-dev/storecraft-backend/pkg/config"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
	"github.com/mvaldes-dev/storecraft-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.NamedPinger,
	redisPinger controllers.NamedPinger,
	basketStore basket.Store,
	catalogRepo *catalog.Repository,
	orderService orders.Service,
	paymentCoordinator *payments.Coordinator,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/baskets/{basketId}", func(r chi.Router) {
			r.Get("/", controllers.BasketGet(basketStore, logg))
			r.Put("/", controllers.BasketPut(basketStore, logg))
			r.Delete("/", controllers.BasketDelete(basketStore, logg))
		})

		r.Post("/payments/{basketId}", controllers.PaymentsReconcile(paymentCoordinator, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(orderService, basketStore, logg))
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Get("/{orderId}", controllers.OrderGet(orderService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(catalogRepo, logg))
			r.Get("/{productId}", controllers.ProductGet(catalogRepo, logg))
		})

		r.Get("/delivery-methods", controllers.DeliveryMethodList(catalogRepo, logg))
	})

	return r
}
