package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"cactuscoin/database"

	"github.com/stretchr/testify/require"
)

// SetupSQLiteDatabase creates a migrated SQLite database in t's temp dir
func SetupSQLiteDatabase(t *testing.T) *database.SQLiteDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.db")
	require.NoError(t, database.RunMigrationsWithURL(path))

	db, err := database.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
