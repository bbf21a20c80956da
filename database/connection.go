package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the PostgreSQL ledger backend
type DB struct {
	*pgxpool.Pool
}

// NewConnection opens a pool to the PostgreSQL ledger at databaseURL.
// Sessions run in UTC because transaction timestamps are stored and compared
// as UTC instants; movement windows are converted before they reach SQL.
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger database URL: %w", err)
	}

	params := poolConfig.ConnConfig.RuntimeParams
	params["timezone"] = "UTC"
	if _, set := params["application_name"]; !set {
		params["application_name"] = "cactuscoin"
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ledger database unreachable: %w", err)
	}

	return &DB{Pool: pool}, nil
}
