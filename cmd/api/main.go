package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mvaldes-dev/storecraft-backend/api/controllers"
	"github.com/mvaldes-dev/storecraft-backend/api/routes"
	"github.com/mvaldes-dev/storecraft-backend/internal/basket"
	"github.com/mvaldes-dev/storecraft-backend/internal/catalog"
	"github.com/mvaldes-dev/storecraft-backend/internal/orders"
	"github.com/mvaldes-dev/storecraft-backend/internal/payments"
	"github.com/mvaldes-dev/storecraft-backend/internal/pricing"
	stripewebhook "github.com/mvaldes-dev/storecraft-backend/internal/webhooks/stripe"
	"github.com/mvaldes-dev/storecraft-backend/pkg/config"
	"github.com/mvaldes-dev/storecraft-backend/pkg/db"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
	"github.com/mvaldes-dev/storecraft-backend/pkg/metrics"
	"github.com/mvaldes-dev/storecraft-backend/pkg/migrate"
	"github.com/mvaldes-dev/storecraft-backend/pkg/redis"
	"github.com/mvaldes-dev/storecraft-backend/pkg/stripe"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	basketStore, err := basket.NewStore(redisClient, cfg.Basket.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create basket store", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())

	reconciler, err := pricing.NewReconciler(catalogRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create price reconciler", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())

	orderService, err := orders.NewService(basketStore, catalogRepo, catalogRepo, ordersRepo, dbClient, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	basketLocker, err := payments.NewBasketLocker(redisClient, cfg.Basket.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create basket locker", err)
		os.Exit(1)
	}

	paymentCoordinator, err := payments.NewCoordinator(basketStore, reconciler, stripeClient, ordersRepo, basketLocker, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment coordinator", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, stripewebhook.ScopePaymentEvents)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		OrderRepo:         ordersRepo,
		TransactionRunner: dbClient,
		Logger:            logg,
		Metrics:           checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			controllers.NamedPinger{Name: "database", Pinger: dbClient},
			controllers.NamedPinger{Name: "redis", Pinger: redisClient},
			basketStore,
			catalogRepo,
			orderService,
			paymentCoordinator,
			stripeClient,
			webhookService,
			webhookGuard,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
