package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-tracker/internal/config"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Open подключает хранилище, выбранное в конфигурации, и применяет схему.
func Open(ctx context.Context, cfg config.StoreConfig) (TaskRepository, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return NewTaskRepo(pool), nil
	case config.DriverSQLite:
		return NewSQLiteRepo(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
