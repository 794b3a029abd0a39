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

	"github.com/yulishop/storefront/api/middleware"
	"github.com/yulishop/storefront/api/routes"
	"github.com/yulishop/storefront/internal/mockbackend"
	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/logger"
	pkgredis "github.com/yulishop/storefront/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "orders-mock"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "orders-mock",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var idempotency middleware.IdempotencyStore = mockbackend.NewMemoryIdempotency()
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err := pkgredis.New(ctx, cfg.Redis, cfg.Store.Namespace+"-mock", logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		idempotency = redisClient
	}

	book := mockbackend.NewOrderBook(cfg.Mock.FailOrders, logg)
	addr := ":" + cfg.Mock.Port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"addr":         addr,
		"fail_orders":  cfg.Mock.FailOrders,
		"require_auth": cfg.Mock.RequireAuth,
	})
	logg.Info(serverCtx, "starting mock order backend")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewMockRouter(cfg, logg, book, mockbackend.DefaultCatalog(), idempotency),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(serverCtx, "mock order backend stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down mock order backend")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(serverCtx, "graceful shutdown failed", err)
	}
}
