package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kurokira/storefront-backend/api/routes"
	"github.com/kurokira/storefront-backend/internal/cart"
	checkoutsvc "github.com/kurokira/storefront-backend/internal/checkout"
	"github.com/kurokira/storefront-backend/internal/favorites"
	"github.com/kurokira/storefront-backend/internal/orders"
	"github.com/kurokira/storefront-backend/internal/payments"
	"github.com/kurokira/storefront-backend/internal/pricing"
	"github.com/kurokira/storefront-backend/internal/products"
	"github.com/kurokira/storefront-backend/pkg/config"
	"github.com/kurokira/storefront-backend/pkg/db"
	"github.com/kurokira/storefront-backend/pkg/logger"
	"github.com/kurokira/storefront-backend/pkg/mercadopago"
	"github.com/kurokira/storefront-backend/pkg/metrics"
	"github.com/kurokira/storefront-backend/pkg/migrate"
	"github.com/kurokira/storefront-backend/pkg/outbox"
	"github.com/kurokira/storefront-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	gateway, err := mercadopago.NewClient(context.Background(), cfg.MercadoPago, cfg.Checkout.GatewayTimeout, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mercadopago client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	productsSvc, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	cartSvc, err := cart.NewService(cartStore, productsSvc, cfg.Cart.MaxQuantity)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	favoritesStore, err := favorites.NewRedisStore(redisClient, cfg.Cart.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create favorites store", err)
		os.Exit(1)
	}
	favoritesSvc, err := favorites.NewService(favoritesStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create favorites service", err)
		os.Exit(1)
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	ordersSvc, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, outboxSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	dispatcher, err := payments.NewDispatcher(gateway, ordersSvc, cartSvc, checkoutMetrics, logg, cfg.Checkout.OrderPrefix)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment dispatcher", err)
		os.Exit(1)
	}

	sessions := checkoutsvc.NewSessionStore(cfg.Checkout.SessionTTL, time.Minute)
	defer sessions.Stop()

	checkoutSvc, err := checkoutsvc.NewService(sessions, cartSvc, pricing.NewEngine(cfg.Pricing), dispatcher, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.Dependencies{
		Config:    cfg,
		Logger:    logg,
		Redis:     redisClient,
		DB:        dbClient,
		Registry:  registry,
		Products:  productsSvc,
		Cart:      cartSvc,
		Favorites: favoritesSvc,
		Checkout:  checkoutSvc,
		Orders:    ordersSvc,
	})

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
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "api server shutdown error", err)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
