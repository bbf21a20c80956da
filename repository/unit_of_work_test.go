package repository_test

import (
	"testing"

	"cactuscoin/events"
	"cactuscoin/repository"
	"cactuscoin/repository/testutil"
	"cactuscoin/service"
)

func TestPostgresLedger(t *testing.T) {
	testutil.RunLedgerSuite(t, func(t *testing.T, bus *events.Bus) service.UnitOfWorkFactory {
		testDB := testutil.SetupTestDatabase(t)
		return repository.NewUnitOfWorkFactory(testDB.DB, bus)
	})
}
