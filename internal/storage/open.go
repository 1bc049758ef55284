package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open builds the backend named by driver: memory, file or postgres. The
// returned func releases it.
func Open(ctx context.Context, driver, dir, dsn string) (Backend, func(), error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), func() {}, nil
	case "file":
		fs, err := NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool: %w", err)
		}
		pg := NewPGStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("client_storage schema: %w", err)
		}
		return pg, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
}
