package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/agritrust/agritrust-backend/api/routes"
	"github.com/agritrust/agritrust-backend/internal/assistant"
	"github.com/agritrust/agritrust-backend/internal/dashboard"
	"github.com/agritrust/agritrust-backend/internal/escrowlog"
	"github.com/agritrust/agritrust-backend/internal/listings"
	"github.com/agritrust/agritrust-backend/internal/notifications"
	"github.com/agritrust/agritrust-backend/internal/orders"
	"github.com/agritrust/agritrust-backend/internal/pricefeed"
	"github.com/agritrust/agritrust-backend/internal/seed"
	"github.com/agritrust/agritrust-backend/internal/wallet"
	"github.com/agritrust/agritrust-backend/pkg/config"
	"github.com/agritrust/agritrust-backend/pkg/db"
	"github.com/agritrust/agritrust-backend/pkg/logger"
	"github.com/agritrust/agritrust-backend/pkg/metrics"
	"github.com/agritrust/agritrust-backend/pkg/migrate"
	"github.com/agritrust/agritrust-backend/pkg/redis"
)

const shutdownGrace = 10 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient := bootstrapRedis(cfg, logg)

	actorRepo := wallet.NewRepository(dbClient.DB())
	listingRepo := listings.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	eventRepo := escrowlog.NewRepository(dbClient.DB())
	noteRepo := notifications.NewRepository(dbClient.DB())
	dashboardRepo := dashboard.NewRepository(dbClient.DB())

	eventSvc, err := escrowlog.NewService(eventRepo)
	requireService(logg, "escrow log", err)

	notifySvc, err := notifications.NewService(noteRepo, cfg.Escrow.NotificationRetention)
	requireService(logg, "notifications", err)

	walletSvc, err := wallet.NewService(actorRepo, dbClient, eventSvc, notifySvc)
	requireService(logg, "wallet", err)

	listingSvc, err := listings.NewService(listingRepo, actorRepo)
	requireService(logg, "listings", err)

	escrowMetrics := metrics.NewEscrowMetrics(prometheus.DefaultRegisterer)

	orderSvc, err := orders.NewService(
		orderRepo, listingRepo, actorRepo,
		walletSvc, eventSvc, notifySvc,
		dbClient, escrowMetrics, logg,
		orders.Config{OrderNumberStart: cfg.Escrow.OrderNumberStart},
	)
	requireService(logg, "orders", err)

	dashboardSvc, err := dashboard.NewService(dashboardRepo, actorRepo)
	requireService(logg, "dashboard", err)

	priceSvc, err := buildPriceFeed(cfg, redisClient, logg)
	requireService(logg, "price feed", err)

	if cfg.App.IsDev() && cfg.FeatureFlags.AutoSeed {
		seeder, err := seed.New(dbClient, actorRepo, listingRepo, notifySvc, logg)
		requireService(logg, "seeder", err)
		if err := seeder.Run(context.Background()); err != nil {
			logg.Error(context.Background(), "failed to seed demo data", err)
			os.Exit(1)
		}
	}

	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, actorRepo, routes.Services{
		Listings:      listingSvc,
		Orders:        orderSvc,
		Wallet:        walletSvc,
		Notifications: notifySvc,
		Dashboard:     dashboardSvc,
		PriceFeed:     priceSvc,
		Assistant:     assistant.NewService(),
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
		Addr:    addr,
		Handler: handler,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	closeErr := dbClient.Close()
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

// bootstrapRedis connects when Redis is configured. Dev environments may run
// without it; the API then serves without idempotency replay or price caching.
func bootstrapRedis(cfg *config.Config, logg *logger.Logger) *redis.Client {
	if cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		if cfg.App.IsDev() {
			logg.Warn(context.Background(), "redis not configured, continuing without cache or replay protection")
			return nil
		}
		logg.Error(context.Background(), "redis configuration required outside dev", errors.New("missing AGRITRUST_REDIS_URL"))
		os.Exit(1)
	}
	client, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	return client
}

func buildPriceFeed(cfg *config.Config, redisClient *redis.Client, logg *logger.Logger) (pricefeed.Service, error) {
	var provider pricefeed.Provider
	if cfg.PriceFeed.URL != "" {
		httpProvider, err := pricefeed.NewHTTPProvider(cfg.PriceFeed.URL, cfg.PriceFeed.FetchTimeout, uint64(cfg.PriceFeed.MaxRetries))
		if err != nil {
			return nil, err
		}
		provider = httpProvider
	} else {
		provider = pricefeed.NewStaticProvider()
	}

	var cache redis.Cache
	if redisClient != nil {
		cache = redisClient
	}
	return pricefeed.NewService(provider, cache, cfg.PriceFeed.CacheTTL, logg)
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
