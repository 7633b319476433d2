package store

import (
	"context"
	"log/slog"

	"github.com/kra-data-tools/notice-tracker/internal/common"
)

// Open constructs the configured store backend.
func Open(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return OpenSQLite(ctx, cfg.Path, logger)
	case "xlsx":
		return OpenXLSX(cfg.Path, cfg.Backup, logger)
	default:
		return nil, common.NewAppError("CONFIG_ERROR", "unknown store backend "+cfg.Backend, common.ErrInvalidInput)
	}
}
