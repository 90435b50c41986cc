package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okestore/storefront-sync/pkg/logger"
)

// Source is the part of a database client the boot migration needs.
type Source interface {
	SQL() (*sql.DB, error)
	Driver() string
}

// OnBoot brings the account schema up to date when enabled. It is a no-op otherwise so
// deployments that migrate out of band can leave the flag off.
func OnBoot(ctx context.Context, enabled bool, src Source, logg *logger.Logger) error {
	if !enabled {
		return nil
	}
	sqlDB, err := src.SQL()
	if err != nil {
		return fmt.Errorf("boot migration: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"set": SetAccounts, "driver": src.Driver()})
	started := time.Now()
	if err := Up(ctx, sqlDB, src.Driver(), SetAccounts); err != nil {
		return fmt.Errorf("boot migration: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"elapsed_ms": time.Since(started).Milliseconds()}), "schema up to date")
	return nil
}
