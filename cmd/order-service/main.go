package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopsphere/order-saga/internal/clients"
	"github.com/shopsphere/order-saga/internal/coordinator"
	sagalogsqlite "github.com/shopsphere/order-saga/internal/coordinator/sagalog/sqlite"
	"github.com/shopsphere/order-saga/internal/httpapi"
	"github.com/shopsphere/order-saga/internal/order"
	"github.com/shopsphere/order-saga/internal/pkg/cache"
	"github.com/shopsphere/order-saga/internal/pkg/config"
	"github.com/shopsphere/order-saga/internal/pkg/telemetry"
	"github.com/shopsphere/order-saga/internal/saga"
)

const serviceName = "order-service"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("%s: %v", serviceName, err)
	}
}

func run(ctx context.Context) error {
	telemetry.InitLogger(serviceName)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	shutdownTracer, err := telemetry.SetupTracer(ctx, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(shutdownCtx)
	}()

	sagaLog, err := sagalogsqlite.Open(cfg.SagaLogPath)
	if err != nil {
		return err
	}
	defer sagaLog.Close()

	lookupCache := cache.NewRedisCache(cfg.RedisAddr, serviceName)

	users := clients.NewUserServiceClient(cfg.UserServiceURL, cfg.LookupTimeout, lookupCache, cfg.CacheTTL)
	products := clients.NewProductServiceClient(cfg.ProductServiceURL, cfg.LookupTimeout)
	inventory := clients.NewSimulatedInventoryClient()
	payments := clients.NewSimulatedPaymentClient(cfg.PaymentSuccessRate)

	sagaStore := saga.NewMemoryStore()
	orchestrator := coordinator.New(users, products, inventory, payments, sagaStore, sagaLog)

	orders := order.NewMemoryRepository()
	handler := httpapi.NewHandler(orders, orchestrator, sagaStore)
	router := httpapi.NewRouter(handler)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("order service listening", "addr", cfg.HTTPAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
