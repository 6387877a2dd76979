package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	billingcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/billing"
	paymentcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/payments"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/newsletter"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/stores"
	subscriptionsvc "github.com/angelmondragon/storefront-backend/internal/subscriptions"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// redisStore is the slice of the Redis client the router needs: readiness
// probes and rate-limit counters.
type redisStore interface {
	Ping(ctx context.Context) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisStore,
	metricsHandler http.Handler,
	storeService stores.Service,
	subscriptionsService subscriptionsvc.Service,
	paymentsService payments.Service,
	newsletterService newsletter.Service,
	productService products.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins),
	)

	newsletterPolicy := middleware.NewRateLimitPolicy(
		"newsletter",
		cfg.Newsletter.RateLimitWindow,
		cfg.Newsletter.RateLimitIPLimit,
		cfg.Newsletter.RateLimitEmailLimit,
	).WithHashKey(cfg.JWT.Secret)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.With(
		middleware.OptionalAuth(cfg.JWT, logg),
		middleware.RateLimit(newsletterPolicy, redisClient, logg),
	).Post("/api/newsletter", controllers.NewsletterSubscribe(newsletterService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products/search", controllers.ProductSearch(productService, logg))
		r.Get("/billing/plans", billingcontrollers.PlansList(subscriptionsService))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/billing/plan", billingcontrollers.CurrentPlan(subscriptionsService, logg))
			r.Post("/billing/subscription", billingcontrollers.ManageSubscription(subscriptionsService, logg))
			r.Get("/dashboard/redirect", billingcontrollers.DashboardRedirect(subscriptionsService, logg))
			r.Get("/stores", controllers.StoresList(storeService, logg))

			r.Route("/stores/{storeId}", func(r chi.Router) {
				r.Post("/payment-intents", paymentcontrollers.PaymentIntent(paymentsService, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireStoreOwner(storeService, logg))
					r.Get("/stripe-account", paymentcontrollers.AccountStatus(paymentsService, logg))
					r.Post("/stripe-account/link", paymentcontrollers.AccountLink(paymentsService, logg))
				})
			})
		})
	})

	return r
}
