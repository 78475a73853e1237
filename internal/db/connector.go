// Package db provides the PostgreSQL connection plumbing for the optional
// database sink.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/tabmeta/pkg/tabmeta"
)

// Connect establishes a connection pool from a PostgreSQL connection
// string (URI or keyword/value format) and verifies it with a ping.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", tabmeta.ErrConnectionFailed)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tabmeta.ErrConnectionFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", tabmeta.ErrConnectionFailed, err)
	}

	return pool, nil
}
