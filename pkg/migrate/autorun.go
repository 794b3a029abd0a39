package migrate

import (
	"context"
	"fmt"

	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/db"
	"github.com/yulishop/storefront/pkg/logger"
)

// MaybeRun applies pending migrations on startup when the SQL store backend is
// selected and auto-migration is enabled.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg.Store.Backend != config.StoreBackendSQL || !cfg.DB.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()})
		logg.Info(ctx, "running goose migrations (auto-run)")
	}

	if err := Run(ctx, sqlDB, client.Driver(), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "goose migrations completed")
	}
	return nil
}
