package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lokapasar/lokapasar-backend/api/controllers"
	"github.com/lokapasar/lokapasar-backend/api/middleware"
	cartsvc "github.com/lokapasar/lokapasar-backend/internal/cart"
	catalogsvc "github.com/lokapasar/lokapasar-backend/internal/catalog"
	chatsvc "github.com/lokapasar/lokapasar-backend/internal/chat"
	discountsvc "github.com/lokapasar/lokapasar-backend/internal/discounts"
	ordersvc "github.com/lokapasar/lokapasar-backend/internal/orders"
	paymentsvc "github.com/lokapasar/lokapasar-backend/internal/payments"
	usersvc "github.com/lokapasar/lokapasar-backend/internal/users"
	"github.com/lokapasar/lokapasar-backend/pkg/auth/session"
	"github.com/lokapasar/lokapasar-backend/pkg/config"
	"github.com/lokapasar/lokapasar-backend/pkg/images"
	"github.com/lokapasar/lokapasar-backend/pkg/logger"
	"github.com/lokapasar/lokapasar-backend/pkg/redis"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DBPinger controllers.Pinger
	Redis    *redis.Client
	Sessions session.Checker
	Images   *images.Store
	Registry prometheus.Gatherer

	Catalog   catalogsvc.Service
	Discounts discountsvc.Service
	Cart      cartsvc.Service
	Orders    ordersvc.Service
	Payments  paymentsvc.Service
	Chat      chatsvc.Service
	Users     usersvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	orderPolicy := middleware.NewRateLimitPolicy(
		"orders", cfg.RateLimit.Window, cfg.RateLimit.OrderIPLimit)
	chatPolicy := middleware.NewRateLimitPolicy(
		"chat", cfg.RateLimit.Window, cfg.RateLimit.ChatIPLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DBPinger, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// storefront reads need no credentials
	r.Route("/api/v1/public", func(r chi.Router) {
		r.Get("/categories", controllers.ListCategories(deps.Catalog, logg))
		r.Get("/products", controllers.ListProducts(deps.Catalog, true, logg))
		r.Get("/products/{productID}", controllers.GetProduct(deps.Catalog, logg))
		r.Get("/payment-methods", controllers.ListPaymentMethods(deps.Payments, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(deps.Users, logg))
			r.Put("/", controllers.UpdateProfile(deps.Users, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Cart, logg))
			r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
			r.Put("/items/{lineID}", controllers.UpdateCartItem(deps.Cart, logg))
			r.Delete("/items/{lineID}", controllers.RemoveCartItem(deps.Cart, logg))
			r.Delete("/", controllers.ClearCart(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RateLimit(orderPolicy, deps.Redis, logg)).
				Post("/", controllers.PlaceOrder(deps.Orders, logg))
			r.Get("/", controllers.ListMyOrders(deps.Orders, logg))
			r.Get("/{orderID}", controllers.GetMyOrder(deps.Orders, logg))
			r.Post("/{orderID}/proof", controllers.UploadPaymentProof(deps.Payments, logg))
		})

		r.Route("/chat", func(r chi.Router) {
			r.With(middleware.RateLimit(chatPolicy, deps.Redis, logg)).
				Post("/messages", controllers.SendMessage(deps.Chat, logg))
			r.Get("/messages", controllers.GetMyThread(deps.Chat, logg))
			r.Post("/read", controllers.MarkThreadRead(deps.Chat, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(deps.Catalog, logg))
			r.Post("/", controllers.CreateCategory(deps.Catalog, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Catalog, false, logg))
			r.Post("/", controllers.CreateProduct(deps.Catalog, deps.Images, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.Catalog, logg))
			r.Put("/{productID}", controllers.UpdateProduct(deps.Catalog, deps.Images, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(deps.Catalog, logg))
			r.Post("/{productID}/units", controllers.CreateUnit(deps.Catalog, logg))
		})

		r.Route("/units", func(r chi.Router) {
			r.Put("/{unitID}", controllers.UpdateUnit(deps.Catalog, logg))
			r.Delete("/{unitID}", controllers.DeleteUnit(deps.Catalog, logg))
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Get("/", controllers.ListDiscounts(deps.Discounts, logg))
			r.Post("/", controllers.CreateDiscount(deps.Discounts, logg))
			r.Get("/{discountID}", controllers.GetDiscount(deps.Discounts, logg))
			r.Put("/{discountID}", controllers.UpdateDiscount(deps.Discounts, logg))
			r.Delete("/{discountID}", controllers.DeleteDiscount(deps.Discounts, logg))
		})

		r.Route("/payment-methods", func(r chi.Router) {
			r.Get("/", controllers.ListPaymentMethods(deps.Payments, logg))
			r.Post("/", controllers.CreatePaymentMethod(deps.Payments, logg))
			r.Put("/{methodID}", controllers.UpdatePaymentMethod(deps.Payments, logg))
			r.Delete("/{methodID}", controllers.DeletePaymentMethod(deps.Payments, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Put("/{orderID}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
			r.Put("/{orderID}/payment-status", controllers.UpdateOrderPaymentStatus(deps.Orders, logg))
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/inbox", controllers.ChatInbox(deps.Chat, logg))
			r.Get("/threads/{userID}", controllers.GetUserThread(deps.Chat, logg))
			r.Post("/threads/{userID}/messages", controllers.AdminReply(deps.Chat, logg))
			r.Post("/threads/{userID}/read", controllers.MarkUserThreadRead(deps.Chat, logg))
		})

		r.Get("/users", controllers.ListUsers(deps.Users, logg))
	})

	return r
}
