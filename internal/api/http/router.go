package http

import (
	"context"
	"net/http"
	"time"

	"rentmarket-backend/internal/config"
	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/service"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services bundles what the router dispatches to.
type Services struct {
	Auth          service.AuthService
	Products      service.ProductService
	Addresses     service.AddressService
	Cart          service.CartService
	Rentals       service.RentalService
	Orders        service.OrderService
	Notifications service.NotificationService
}

type Options struct {
	RateLimit config.RateLimitConfig
	// Redis backs the rate limiter. Nil disables it.
	Redis redis.Scripter
	// DB is pinged by the health route. Nil means always healthy.
	DB Pinger
}

func NewRouter(svc Services, opts Options) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed", Message: "method not allowed"})
	})

	// Rate limit precedes auth: unauthenticated requests are counted too.
	r.Use(requestIDMiddleware, loggingMiddleware, rateLimitMiddleware(opts.RateLimit, opts.Redis), authMiddleware(svc.Auth))

	r.HandleFunc("/health", healthHandler(opts.DB)).Methods(http.MethodGet).Name("health")

	api := r.PathPrefix("/api/v1").Subrouter()

	auth := NewAuthHandler(svc.Auth)
	api.HandleFunc("/auth/signup", auth.Signup).Methods(http.MethodPost).Name("auth.signup")
	api.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost).Name("auth.login")

	products := NewProductHandler(svc.Products)
	api.HandleFunc("/products", products.Create).Methods(http.MethodPost).Name("products.create")
	api.HandleFunc("/products/mine", products.ListMine).Methods(http.MethodGet).Name("products.mine")
	api.HandleFunc("/products/{id:[0-9]+}", products.Get).Methods(http.MethodGet).Name("products.get")
	api.HandleFunc("/products/{id:[0-9]+}", products.Update).Methods(http.MethodPut).Name("products.update")

	addresses := NewAddressHandler(svc.Addresses)
	api.HandleFunc("/addresses", addresses.Create).Methods(http.MethodPost).Name("addresses.create")
	api.HandleFunc("/addresses", addresses.List).Methods(http.MethodGet).Name("addresses.list")
	api.HandleFunc("/addresses/active", addresses.Active).Methods(http.MethodGet).Name("addresses.active")
	api.HandleFunc("/addresses/{id:[0-9]+}", addresses.Get).Methods(http.MethodGet).Name("addresses.get")
	api.HandleFunc("/addresses/{id:[0-9]+}", addresses.Update).Methods(http.MethodPut).Name("addresses.update")
	api.HandleFunc("/addresses/{id:[0-9]+}/activate", addresses.SetActive).Methods(http.MethodPost).Name("addresses.activate")
	api.HandleFunc("/addresses/{id:[0-9]+}", addresses.Delete).Methods(http.MethodDelete).Name("addresses.delete")

	cart := NewCartHandler(svc.Cart)
	api.HandleFunc("/cart", cart.Get).Methods(http.MethodGet).Name("cart.get")
	api.HandleFunc("/cart", cart.Clear).Methods(http.MethodDelete).Name("cart.clear")
	api.HandleFunc("/cart/items", cart.AddItem).Methods(http.MethodPost).Name("cart.add")
	api.HandleFunc("/cart/items/{itemId:[0-9]+}", cart.UpdateItem).Methods(http.MethodPatch).Name("cart.update")
	api.HandleFunc("/cart/items/{itemId:[0-9]+}", cart.RemoveItem).Methods(http.MethodDelete).Name("cart.remove")

	rentals := NewRentalHandler(svc.Rentals)
	api.HandleFunc("/rental-requests", rentals.Create).Methods(http.MethodPost).Name("rentals.create")
	api.HandleFunc("/rental-requests/mine", rentals.ListMine).Methods(http.MethodGet).Name("rentals.mine")
	api.HandleFunc("/rental-requests/owned", rentals.ListOwned).Methods(http.MethodGet).Name("rentals.owned")
	api.HandleFunc("/rental-requests/stats", rentals.Stats).Methods(http.MethodGet).Name("rentals.stats")
	api.HandleFunc("/rental-requests/{id:[0-9]+}", rentals.Get).Methods(http.MethodGet).Name("rentals.get")
	api.HandleFunc("/rental-requests/{id:[0-9]+}", rentals.Delete).Methods(http.MethodDelete).Name("rentals.delete")
	for path, event := range rentalEvents {
		api.HandleFunc("/rental-requests/{id:[0-9]+}/"+path, rentals.transition(event)).
			Methods(http.MethodPost).Name("rentals." + path)
	}

	orders := NewOrderHandler(svc.Orders)
	api.HandleFunc("/orders", orders.Create).Methods(http.MethodPost).Name("orders.create")
	api.HandleFunc("/orders/mine", orders.ListMine).Methods(http.MethodGet).Name("orders.mine")
	api.HandleFunc("/orders/sold", orders.ListSales).Methods(http.MethodGet).Name("orders.sold")
	api.HandleFunc("/orders/{id:[0-9]+}", orders.Get).Methods(http.MethodGet).Name("orders.get")
	api.HandleFunc("/orders/{id:[0-9]+}/status", orders.UpdateStatus).Methods(http.MethodPatch).Name("orders.status")

	notes := NewNotificationHandler(svc.Notifications)
	api.HandleFunc("/notifications", notes.List).Methods(http.MethodGet).Name("notifications.list")
	api.HandleFunc("/notifications/unread", notes.Unread).Methods(http.MethodGet).Name("notifications.unread")
	api.HandleFunc("/notifications/unread-count", notes.UnreadCount).Methods(http.MethodGet).Name("notifications.unread_count")
	api.HandleFunc("/notifications/read-all", notes.MarkAllRead).Methods(http.MethodPost).Name("notifications.read_all")
	api.HandleFunc("/notifications/{id:[0-9]+}/read", notes.MarkRead).Methods(http.MethodPost).Name("notifications.read")
	api.HandleFunc("/notifications/{id:[0-9]+}", notes.Delete).Methods(http.MethodDelete).Name("notifications.delete")

	return r
}

// rentalEvents maps the action path segment to the transition it triggers.
var rentalEvents = map[string]domain.RentalEvent{
	"approve": domain.RentalEventApprove,
	"reject":  domain.RentalEventReject,
	"cancel":  domain.RentalEventCancel,
	"deliver": domain.RentalEventComplete,
	"return":  domain.RentalEventReturn,
	"rate":    domain.RentalEventRate,
	"notes":   domain.RentalEventAnnotate,
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
