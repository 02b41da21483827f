// Package router собирает HTTP-маршруты API.
package router

import (
	"net/http"

	"fablink/internal/handlers"
	"fablink/internal/logger"
	mw "fablink/internal/middleware"
	"fablink/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Options struct {
	CORSAllowedOrigins []string
	// лимит для входа, регистрации и обновления токена
	AuthRateLimit float64
	AuthRateBurst int
}

func New(h *handlers.Handler, opts Options, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(log))
	r.Use(logger.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", h.RootHandler)
	r.Get("/health", h.HealthHandler)
	r.Get("/ready", h.ReadyHandler)
	r.Get("/startup", h.ReadyHandler)

	authenticated := mw.Authenticator(h.Tokens, h.Blacklist)
	designer := mw.RequireKind(models.KindDesigner)
	factory := mw.RequireKind(models.KindFactory)
	limiter := mw.NewRateLimiter(opts.AuthRateLimit, opts.AuthRateBurst)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		// аккаунты
		r.Route("/accounts", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limiter.Middleware)
				r.Post("/{kind}/signup", h.SignupHandler)
				r.Post("/{kind}/login", h.LoginHandler)
				r.Post("/token/refresh", h.RefreshHandler)
			})
			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Post("/logout", h.LogoutHandler)
				r.Get("/profile", h.GetProfileHandler)
				r.Patch("/profile", h.UpdateProfileHandler)
				r.Post("/password", h.ChangePasswordHandler)
			})
		})

		// изделия, заказы, запросы и ставки
		r.Route("/manufacturing", func(r chi.Router) {
			r.Use(authenticated)

			r.Get("/request-orders", h.ListRequestOrdersHandler)
			r.Get("/request-orders/{requestOrderId}", h.GetRequestOrderHandler)
			r.Patch("/bids/{bidId}/settlement", h.UpdateSettlementHandler)

			r.Group(func(r chi.Router) {
				r.Use(designer)
				r.Post("/products", h.CreateProductHandler)
				r.Get("/products", h.ListProductsHandler)
				r.Get("/products/{productId}", h.GetProductHandler)
				r.Put("/products/{productId}", h.UpdateProductHandler)
				r.Delete("/products/{productId}", h.DeleteProductHandler)
				r.Patch("/products/{productId}/quantity-schedule", h.UpdateScheduleHandler)

				r.Post("/orders", h.CreateOrderHandler)
				r.Get("/orders", h.ListOrdersHandler)
				r.Get("/orders/{orderId}", h.GetOrderHandler)

				r.Post("/request-orders", h.CreateRequestOrderHandler)
				r.Get("/request-orders/{requestOrderId}/bids", h.ListRequestOrderBidsHandler)
				r.Post("/bids/{bidId}/select", h.SelectBidHandler)
			})

			r.Group(func(r chi.Router) {
				r.Use(factory)
				r.Post("/bids", h.CreateBidHandler)
				r.Get("/bids", h.ListBidsHandler)
				r.Patch("/bids/{bidId}", h.EditBidHandler)
			})
		})

		// прогресс заказов
		r.Route("/progress", func(r chi.Router) {
			r.Use(authenticated)

			r.Group(func(r chi.Router) {
				r.Use(designer)
				r.Get("/designer-orders/{orderId}", h.GetDesignerProgressHandler)
				r.Patch("/designer-orders/{orderId}/steps/{index}", h.UpdateDesignerStepHandler)
				r.Post("/designer-orders/{orderId}/feedback", h.AddFeedbackHandler)
			})

			r.Group(func(r chi.Router) {
				r.Use(factory)
				r.Get("/factory-orders", h.ListFactoryProgressHandler)
				r.Patch("/factory-orders/{orderId}/steps/{index}", h.UpdateFactoryStepHandler)
			})
		})
	})

	return r
}
