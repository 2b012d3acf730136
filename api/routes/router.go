package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmarquez/storefront-backend/api/controllers"
	cartcontrollers "github.com/dmarquez/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/dmarquez/storefront-backend/api/controllers/orders"
	"github.com/dmarquez/storefront-backend/api/middleware"
	"github.com/dmarquez/storefront-backend/internal/cart"
	checkoutsvc "github.com/dmarquez/storefront-backend/internal/checkout"
	"github.com/dmarquez/storefront-backend/internal/orders"
	products "github.com/dmarquez/storefront-backend/internal/products"
	"github.com/dmarquez/storefront-backend/pkg/config"
	"github.com/dmarquez/storefront-backend/pkg/db"
	"github.com/dmarquez/storefront-backend/pkg/logger"
	"github.com/dmarquez/storefront-backend/pkg/metrics"
	pkgredis "github.com/dmarquez/storefront-backend/pkg/redis"
)

// Deps carries everything the router needs wired.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *pkgredis.Client
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer

	CartService     cart.Service
	CheckoutService checkoutsvc.Service
	OrderService    orders.Service
	ProductService  products.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		// catalog reads are public
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.ProductService, logg))
			r.Get("/{productId}", controllers.ProductFetch(deps.ProductService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))
			r.Get("/", cartcontrollers.CartFetch(deps.CartService, logg))
			r.Post("/sync", cartcontrollers.CartSync(deps.CartService, deps.Metrics, logg))
			r.Put("/", cartcontrollers.CartSave(deps.CartService, logg))
			r.Delete("/", cartcontrollers.CartClear(deps.CartService, logg))
		})

		// checkout accepts both owners and guests
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))
			r.Post("/checkout", controllers.Checkout(deps.CheckoutService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Get("/", ordercontrollers.OrderList(deps.OrderService, logg))
				r.Get("/{orderId}", ordercontrollers.OrderFetch(deps.OrderService, logg))
			})

			// fulfillment hooks are called by back-office tooling, not shoppers
			r.Patch("/{orderId}/status", ordercontrollers.OrderStatusUpdate(deps.OrderService, logg))
			r.Patch("/{orderId}/payment-status", ordercontrollers.OrderPaymentStatusUpdate(deps.OrderService, logg))
		})
	})

	return r
}
