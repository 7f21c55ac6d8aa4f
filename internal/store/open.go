package store

import (
	"context"
	"fmt"

	"taskify/internal/config"
	"taskify/internal/task"
)

// Store is a task.Repository backed by a database connection.
type Store interface {
	task.Repository
	Close() error
}

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return OpenMySQL(ctx, cfg.DSN)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.DSN)
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.DSN, cfg.Database)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
