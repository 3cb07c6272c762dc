package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/catalog"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/review"
	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/shipping"
)

// RouterConfig collects the handlers' dependencies. Cache and AdminToken are
// optional.
type RouterConfig struct {
	Catalog    catalog.Store
	Reviews    review.Store
	Options    shipping.OptionStore
	Estimator  PackageEstimator
	Quoter     RateQuoter
	QuoteCache shipping.QuoteCache
	Submitter  OrderSubmitter
	Orders     OrderReader
	Updater    OrderUpdater
	AdminToken string
}

func NewRouter(cfg RouterConfig) http.Handler {
	products := NewProductsHandler(cfg.Catalog)
	reviews := NewReviewsHandler(cfg.Reviews, cfg.Catalog)
	options := NewOptionsHandler(cfg.Options)
	quote := NewQuoteHandler(cfg.Estimator, cfg.Quoter, cfg.QuoteCache)
	checkout := NewCheckoutHandler(cfg.Submitter)
	adminOrders := NewAdminOrdersHandler(cfg.Orders, cfg.Updater)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", products.List)
		r.Get("/products/{id}", products.Get)
		r.Get("/products/{id}/reviews", reviews.List)
		r.Post("/products/{id}/reviews", reviews.Create)

		r.Get("/shipping/options", options.List)
		r.Post("/shipping/quote", quote.Quote)

		r.Post("/checkout", checkout.Checkout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminTokenMiddleware(cfg.AdminToken))

			r.Get("/products", products.AdminList)
			r.Post("/products", products.Create)
			r.Put("/products/{id}", products.Update)
			r.Post("/products/{id}/active", products.SetActive)

			r.Get("/shipping-options", options.AdminList)
			r.Post("/shipping-options", options.Create)
			r.Put("/shipping-options/{id}", options.Update)
			r.Post("/shipping-options/{id}/active", options.SetActive)

			r.Get("/orders", adminOrders.List)
			r.Get("/orders/{id}", adminOrders.Get)
			r.Post("/orders/{id}/update", adminOrders.Update)

			r.Get("/metrics", adminOrders.Metrics)
		})
	})

	return r
}
