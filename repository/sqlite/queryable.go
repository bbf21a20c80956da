package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// queryable is satisfied by both *sql.DB and *sql.Tx
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// toMillis normalizes timestamps into millisecond precision for storage
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
