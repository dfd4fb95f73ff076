package factory

import (
	"fmt"

	"github.com/slotwise/scheduler/internal/config"
	"github.com/slotwise/scheduler/internal/store"
	"github.com/slotwise/scheduler/internal/store/postgres"
	"github.com/slotwise/scheduler/internal/store/sqlite"
)

// NewStore opens the configured storage driver and ensures its schema.
func NewStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		s := postgres.NewWithDB(db)
		if err := postgres.EnsureSchema(db); err != nil {
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return s, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s := sqlite.NewWithDB(db)
		if err := sqlite.EnsureSchema(db); err != nil {
			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
}
