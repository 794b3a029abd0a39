package storefront

import (
	"context"
	"fmt"

	"github.com/yulishop/storefront/internal/clientstore"
	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/db"
	"github.com/yulishop/storefront/pkg/logger"
	"github.com/yulishop/storefront/pkg/migrate"
	pkgredis "github.com/yulishop/storefront/pkg/redis"
	"go.uber.org/multierr"
)

// Backend is an opened client store plus what it needs torn down.
type Backend struct {
	Store   clientstore.Store
	Pingers map[string]func(context.Context) error
	closers []func() error
}

// Close releases the backend in reverse open order.
func (b *Backend) Close() error {
	var err error
	for i := len(b.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, b.closers[i]())
	}
	b.closers = nil
	return err
}

// OpenStore connects the client store selected by cfg.Store.Backend. For the
// SQL backend it runs migrations when enabled and polls for external changes
// until ctx is done.
func OpenStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	b := &Backend{Pingers: map[string]func(context.Context) error{}}

	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		b.Store = clientstore.NewMemoryStore()

	case config.StoreBackendRedis:
		client, err := pkgredis.New(ctx, cfg.Redis, cfg.Store.Namespace, logg)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		store, err := clientstore.NewRedisStore(ctx, client, logg)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("open redis store: %w", err), b.Close())
		}
		b.closers = append(b.closers, store.Close)
		b.Store = store
		b.Pingers["redis"] = client.Ping

	case config.StoreBackendSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(err, b.Close())
		}
		store, err := clientstore.NewSQLStore(ctx, client.DB(), cfg.Store.Namespace, cfg.Store.PollInterval, logg)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("open sql store: %w", err), b.Close())
		}
		pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		go store.Run(pollCtx)
		b.closers = append(b.closers, func() error {
			cancel()
			return nil
		})
		b.Store = store
		b.Pingers["database"] = client.Ping

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "backend", cfg.Store.Backend), "client store ready")
	}
	return b, nil
}
