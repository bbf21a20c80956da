package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	require.NoError(t, RunMigrationsWithURL(path))

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var tables int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('balances', 'transactions')`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)
}

func TestRunMigrationsWithURL_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	require.NoError(t, RunMigrationsWithURL(path))
	require.NoError(t, RunMigrationsWithURL(path))
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), " ")
	assert.Error(t, err)
}
