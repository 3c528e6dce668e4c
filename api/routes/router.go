package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JKPrasad01/FoodAppFrontend/api/controllers"
	cartcontrollers "github.com/JKPrasad01/FoodAppFrontend/api/controllers/cart"
	ordercontrollers "github.com/JKPrasad01/FoodAppFrontend/api/controllers/orders"
	"github.com/JKPrasad01/FoodAppFrontend/api/middleware"
	"github.com/JKPrasad01/FoodAppFrontend/internal/client"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/config"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/enums"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
)

// ClientRegistry hands out the per-visitor client.
type ClientRegistry interface {
	Get(ctx context.Context, visitorID string) (*client.Client, error)
}

// RateLimiter counts attempts in fixed windows. Nil disables auth throttling.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry ClientRegistry,
	store controllers.Pinger,
	limiter RateLimiter,
	idempotency middleware.IdempotencyStore,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentifierLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterIdentifierLim,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Visitor(cfg.Visitor, registry, logg))

		r.Route("/session", func(r chi.Router) {
			r.Get("/", controllers.SessionFetch(logg))
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.SessionLogin(logg))
			r.With(
				middleware.AuthRateLimit(registerPolicy, limiter, logg),
				middleware.Idempotency(idempotency, logg),
			).Post("/register", controllers.SessionRegister(logg))
			r.Post("/logout", controllers.SessionLogout(logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Protected(cfg.Guard, logg))

			r.Get("/restaurants", controllers.RestaurantList(logg))
			r.Get("/restaurants/{restaurantId}/menu", controllers.RestaurantMenu(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(logg))
				r.Delete("/", cartcontrollers.CartClear(logg))
				r.Post("/items", cartcontrollers.CartAddItem(logg))
				r.Patch("/items/{itemId}", cartcontrollers.CartAdjustItem(logg))
				r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(logg))
			})

			r.With(middleware.Idempotency(idempotency, logg)).Post("/checkout", controllers.Checkout(logg))
			r.Get("/orders", ordercontrollers.List(logg))
			r.Put("/profile", controllers.ProfileUpdate(logg))
		})

		r.With(middleware.Protected(cfg.Guard, logg, enums.RoleAdmin)).Post("/admin/restaurants", controllers.RestaurantCreate(logg))
		r.With(
			middleware.Protected(cfg.Guard, logg, enums.RoleAdmin, enums.RoleManager),
			middleware.Idempotency(idempotency, logg),
		).Post("/manage/restaurants/import", controllers.RestaurantImport(logg))
	})

	return r
}
