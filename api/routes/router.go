package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kurokira/storefront-backend/api/controllers"
	"github.com/kurokira/storefront-backend/api/middleware"
	"github.com/kurokira/storefront-backend/internal/cart"
	checkoutsvc "github.com/kurokira/storefront-backend/internal/checkout"
	"github.com/kurokira/storefront-backend/internal/favorites"
	"github.com/kurokira/storefront-backend/internal/orders"
	"github.com/kurokira/storefront-backend/internal/products"
	"github.com/kurokira/storefront-backend/pkg/config"
	"github.com/kurokira/storefront-backend/pkg/logger"
	"github.com/kurokira/storefront-backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *redis.Client
	DB       controllers.Pinger
	Registry *prometheus.Registry

	Products  products.Service
	Cart      cart.Service
	Favorites favorites.Service
	Checkout  checkoutsvc.Service
	Orders    orders.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Products, logg))
			r.Get("/{slug}", controllers.ProductGet(deps.Products, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items", controllers.CartRemoveItem(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoritesList(deps.Favorites, logg))
			r.Put("/{slug}", controllers.FavoriteAdd(deps.Favorites, logg))
			r.Delete("/{slug}", controllers.FavoriteRemove(deps.Favorites, logg))
			r.Delete("/", controllers.FavoritesClear(deps.Favorites, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutState(deps.Checkout, logg))
			r.Post("/personal", controllers.CheckoutPersonal(deps.Checkout, logg))
			r.Post("/shipping", controllers.CheckoutShipping(deps.Checkout, logg))
			r.Post("/back", controllers.CheckoutBack(deps.Checkout, logg))
			r.With(middleware.SubmitRateLimit(
				deps.Redis,
				cfg.Checkout.SubmitLimit,
				cfg.Checkout.SubmitWindow,
				logg,
			)).Post("/submit", controllers.CheckoutSubmit(deps.Checkout, logg))
		})

		r.Get("/orders/confirmation", controllers.OrderConfirmation(deps.Orders, logg))
	})

	return r
}
