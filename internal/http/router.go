package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Services is everything the router serves.
type Services struct {
	Auth     AuthService
	Catalog  CatalogService
	Cart     CartService
	Checkout CheckoutService
	Orders   OrdersService
	Events   EventSource
}

// NewRouter builds the API. requestTimeout bounds every route except the
// event stream.
func NewRouter(svc Services, requestTimeout time.Duration) http.Handler {
	authHandler := NewAuthHandler(svc.Auth, requestTimeout)
	productHandler := NewProductHandler(svc.Catalog, requestTimeout)
	cartHandler := NewCartHandler(svc.Cart, svc.Catalog, requestTimeout)
	checkoutHandler := NewCheckoutHandler(svc.Checkout, svc.Catalog, requestTimeout)
	ordersHandler := NewOrdersHandler(svc.Orders, svc.Catalog, requestTimeout)
	eventsHandler := NewEventsHandler(svc.Events, 0)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/events", eventsHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Use(middleware.Compress(5))
			r.Use(MaxBodyMiddleware(maxRequestBodySize))

			r.Route("/auth", func(r chi.Router) {
				r.Get("/", authHandler.State)
				r.Post("/login", authHandler.Login)
				r.Post("/signup", authHandler.Signup)
				r.Post("/logout", authHandler.Logout)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.ListProducts)
				r.Get("/categories", productHandler.ListCategories)
				r.Post("/refresh", productHandler.Refresh)
				r.Get("/{id}", productHandler.GetProduct)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
				r.Put("/visibility", cartHandler.SetVisibility)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkoutHandler.GetState)
				r.Post("/open", checkoutHandler.Open)
				r.Post("/close", checkoutHandler.Close)
				r.Post("/buy-now/{product_id}", checkoutHandler.BuyNow)
				r.Post("/submit", checkoutHandler.Submit)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordersHandler.ListOrders)
				r.Post("/", ordersHandler.PlaceOrder)
				r.Get("/status", ordersHandler.GetStatus)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
