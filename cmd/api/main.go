package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/newsletter"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/stores"
	"github.com/angelmondragon/storefront-backend/internal/subscriptions"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/email"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap stripe", err)
		os.Exit(1)
	}
	if cfg.App.IsProd() != stripeClient.IsLive() {
		logg.Warn(logg.WithField(ctx, "stripe_env", stripeClient.Environment()), "stripe environment does not match app environment")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	providerMetrics := metrics.NewProviderMetrics(registry)

	sender, err := email.NewSender(cfg.App, cfg.Email, providerMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create email sender", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)
	storesRepo := stores.NewRepository(conn)

	usersService, err := users.NewService(users.ServiceParams{Repo: usersRepo, TxRunner: dbClient})
	requireService(ctx, logg, "users", err)

	storeService, err := stores.NewService(storesRepo)
	requireService(ctx, logg, "stores", err)

	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Users:      usersService,
		Stores:     storeService,
		Stripe:     subscriptions.NewStripeClient(stripeClient, providerMetrics),
		Catalog:    subscriptions.NewCatalog(cfg.Stripe),
		BillingURL: cfg.App.AbsoluteURL(subscriptions.BillingPath),
		Logger:     logg,
	})
	requireService(ctx, logg, "subscriptions", err)

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Payments: payments.NewRepository(conn),
		Stores:   storesRepo,
		Stripe:   payments.NewStripeClient(stripeClient, providerMetrics),
		TxRunner: dbClient,
		App:      cfg.App,
		Logger:   logg,
	})
	requireService(ctx, logg, "payments", err)

	newsletterService, err := newsletter.NewService(newsletter.ServiceParams{
		Repo:      newsletter.NewRepository(conn),
		Users:     usersService,
		Sender:    sender,
		FromEmail: cfg.Email.FromAddress,
		SiteURL:   cfg.App.AbsoluteURL(""),
	})
	requireService(ctx, logg, "newsletter", err)

	productService, err := products.NewService(products.ServiceParams{
		Repo:     products.NewRepository(conn),
		Cache:    redisClient,
		Logger:   logg,
		Limit:    cfg.Search.ResultLimit,
		CacheTTL: cfg.Search.CacheTTL,
	})
	requireService(ctx, logg, "products", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"instance":   instance.ID(),
		"stripe_env": stripeClient.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			storeService,
			subscriptionsService,
			paymentsService,
			newsletterService,
			productService,
		),
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	err = multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if err != nil {
		logg.Error(shutdownCtx, "error during shutdown", err)
		exitCode = 1
	}
	logg.Info(shutdownCtx, "api server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "service", name), "failed to create service", err)
	os.Exit(1)
}
