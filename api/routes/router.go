package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/feiralocal-backend/api/controllers"
	"github.com/angelmondragon/feiralocal-backend/api/middleware"
	"github.com/angelmondragon/feiralocal-backend/internal/scheduler"
	"github.com/angelmondragon/feiralocal-backend/pkg/config"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
	"github.com/angelmondragon/feiralocal-backend/pkg/metrics"
)

// Storefront is everything the API exposes. *storefront.Storefront
// satisfies it.
type Storefront interface {
	controllers.CatalogService
	controllers.CartService
	controllers.OrderService
	controllers.SessionService
	controllers.OperatorService
	controllers.AdminService
}

// Deps groups the collaborators NewRouter wires into handlers. Replay,
// HTTPMetrics and Metrics are optional.
type Deps struct {
	Storefront  Storefront
	Storage     controllers.Pinger
	Debouncer   *scheduler.Debouncer
	Replay      middleware.ReplayStore
	HTTPMetrics *metrics.HTTPMetrics
	// Metrics serves the prometheus scrape endpoint.
	Metrics http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	sf := deps.Storefront

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Storage))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", controllers.CatalogView(sf, logg))
		r.Get("/products", controllers.ListProducts(sf, logg))
		r.Get("/categories", controllers.ListCategories(sf))
		r.Get("/stores", controllers.ListStores(sf))
		r.Get("/discovery", controllers.DiscoveryRows(sf))

		r.Route("/filters", func(r chi.Router) {
			r.Get("/", controllers.GetFilters(sf))
			r.Put("/", controllers.UpdateFilters(sf, logg))
			r.Post("/search", controllers.SearchFilters(sf, deps.Debouncer, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(sf))
			r.Delete("/", controllers.ClearCart(sf))
			r.Post("/items", controllers.AddCartItem(sf, logg))
			r.Patch("/items/{productID}", controllers.ChangeCartItem(sf, logg))
			r.Post("/demo", controllers.QuickStart(sf, logg))
		})

		r.With(middleware.Idempotency(deps.Replay, logg)).Post("/checkout", controllers.Checkout(sf, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(sf, logg))
			r.Delete("/", controllers.ResetOrders(sf))
			r.Post("/advance", controllers.AdvanceOrder(sf, logg))
		})

		r.Get("/scope", controllers.GetScope(sf))
		r.Put("/scope", controllers.UpdateScope(sf, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/", controllers.GetAuth(sf))
			r.Post("/{role}/login", controllers.Login(sf, logg))
			r.Post("/{role}/logout", controllers.Logout(sf, logg))
		})

		r.Route("/store/{storeID}", func(r chi.Router) {
			r.Get("/dashboard", controllers.StoreDashboard(sf, logg))
			r.Get("/products", controllers.ListStoreProducts(sf, logg))
			r.Post("/products", controllers.CreateStoreProduct(sf, logg))
			r.Patch("/products/{productID}", controllers.UpdateStoreProduct(sf, logg))
			r.Delete("/products/{productID}", controllers.DeleteStoreProduct(sf, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/dashboard", controllers.AdminDashboard(sf))
			r.Post("/seed", controllers.AdminSeedOrders(sf))
			r.Post("/reset", controllers.AdminReset(sf, logg))
		})
	})

	return r
}
