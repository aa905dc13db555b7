package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aquapeak/cart-service/api/routes"
	cartsvc "github.com/aquapeak/cart-service/internal/cart"
	"github.com/aquapeak/cart-service/internal/checkout"
	"github.com/aquapeak/cart-service/pkg/config"
	"github.com/aquapeak/cart-service/pkg/kv"
	"github.com/aquapeak/cart-service/pkg/logger"
	"github.com/aquapeak/cart-service/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cart-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cart-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	storage, err := newKVStore(context.Background(), cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap kv backend", err)
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logg.Error(context.Background(), "error closing kv backend", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	cartManager, err := cartsvc.NewManager(storage, logg, cartMetrics, cfg.Cart)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		os.Exit(1)
	}

	deliveryClient, err := checkout.NewClient(cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout client", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Delivery: deliveryClient,
		Logger:   logg,
		Metrics:  checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"kv_backend": cfg.KV.Backend,
	})
	logg.Info(ctx, "starting cart api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, storage, registry, cartManager, checkoutService),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "cart api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down cart api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
	}
}

func newKVStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.KV.Backend {
	case config.KVBackendRedis:
		return kv.NewRedis(ctx, cfg.Redis)
	case config.KVBackendSQLite:
		return kv.NewSQLite(cfg.SQLite)
	default:
		return kv.NewMemory(), nil
	}
}
