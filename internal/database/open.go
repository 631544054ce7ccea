package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickgao/quotesync/internal/config"
)

// Open opens the store selected by cfg. For SQLite, dataDir overrides
// cfg.DataDir when set.
func Open(ctx context.Context, cfg config.StoreConfig, dataDir string) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if dataDir == "" {
			dataDir = cfg.DataDir
		}
		if dataDir == "" {
			return nil, errors.New("open sqlite: no data directory")
		}
		return OpenSQLite(ctx, DataFile(dataDir, cfg.FileName))
	case config.DriverPostgres:
		return ConnectPostgres(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
