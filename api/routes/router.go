package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aquapeak/cart-service/api/controllers"
	"github.com/aquapeak/cart-service/api/middleware"
	cartsvc "github.com/aquapeak/cart-service/internal/cart"
	checkoutsvc "github.com/aquapeak/cart-service/internal/checkout"
	"github.com/aquapeak/cart-service/pkg/config"
	"github.com/aquapeak/cart-service/pkg/kv"
	"github.com/aquapeak/cart-service/pkg/logger"
)

// NewRouter wires the HTTP surface: health probes, metrics, session minting,
// and the session-scoped cart and checkout endpoints.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storage kv.Store,
	gatherer prometheus.Gatherer,
	cartManager *cartsvc.Manager,
	checkoutService checkoutsvc.Service,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, storage))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/api/v1/sessions", controllers.SessionCreate(cfg.Session, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartManager, logg))
			r.Delete("/", controllers.CartClear(cartManager, logg))
			r.Post("/items", controllers.CartAddItem(cartManager, logg))
			r.Patch("/items/{productId}", controllers.CartSetQuantity(cartManager, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartManager, logg))
		})

		r.Post("/api/v1/checkout", controllers.CheckoutSubmit(cartManager, checkoutService, logg))
	})

	return r
}
