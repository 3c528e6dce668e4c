package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JKPrasad01/FoodAppFrontend/api/middleware"
	"github.com/JKPrasad01/FoodAppFrontend/api/routes"
	"github.com/JKPrasad01/FoodAppFrontend/internal/backend"
	"github.com/JKPrasad01/FoodAppFrontend/internal/checkout"
	"github.com/JKPrasad01/FoodAppFrontend/internal/client"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/config"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/db"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/metrics"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/redis"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage/redisstore"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage/sqlstore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logFormat := cfg.App.LogFormat
	if _, explicit := os.LookupEnv(config.EnvLogFormat); cfg.App.IsDev() && !explicit {
		logFormat = logger.FormatConsole
	}
	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      logFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewStorefront(registry)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, cfg.Store.Namespace, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer closeQuietly(logg, "redis", redisClient)
	}

	store, closer, err := openStateStore(ctx, cfg, redisClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to open state store", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closeQuietly(logg, "state store", closer)
	}

	factory, err := backend.NewFactory(cfg.Backend, backend.WithMetrics(m), backend.WithLogger(logg))
	if err != nil {
		logg.Error(ctx, "failed to build backend client factory", err)
		os.Exit(1)
	}

	settings, err := checkout.SettingsFromConfig(cfg.Checkout)
	if err != nil {
		logg.Error(ctx, "invalid checkout configuration", err)
		os.Exit(1)
	}

	clients, err := client.NewRegistry(store, factory, settings, cfg.Registry, logg, m)
	if err != nil {
		logg.Error(ctx, "failed to create client registry", err)
		os.Exit(1)
	}
	defer clients.Close()
	go clients.Run(ctx, cfg.Registry.SweepInterval)

	var (
		limiter     routes.RateLimiter
		idempotency middleware.IdempotencyStore
	)
	if redisClient != nil {
		limiter = redisClient
		idempotency = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, auth rate limits and checkout replay protection disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"store": cfg.Store.Driver,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, clients, store, limiter, idempotency, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting storefront server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}
	logg.Info(shutdownCtx, "storefront server stopped")
}

// openStateStore picks the durable backend for per-visitor session and cart
// state. The returned closer is nil when nothing needs closing.
func openStateStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logg *logger.Logger) (storage.Backend, io.Closer, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logg.Warn(ctx, "using in-memory state store, visitor state is lost on restart")
		return storage.NewMemory(), nil, nil
	case config.StoreDriverRedis:
		store, err := redisstore.New(redisClient, cfg.Visitor.TTL)
		return store, nil, err
	default:
		dbClient, err := db.New(ctx, cfg.Store.Driver, cfg.DB, logg)
		if err != nil {
			return nil, nil, err
		}
		store, err := sqlstore.New(ctx, dbClient)
		if err != nil {
			_ = dbClient.Close()
			return nil, nil, err
		}
		return store, dbClient, nil
	}
}

func closeQuietly(logg *logger.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logg.Error(context.Background(), "error closing "+name, err)
	}
}
