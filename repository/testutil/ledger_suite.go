package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"cactuscoin/events"
	"cactuscoin/models"
	"cactuscoin/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FactoryBuilder returns a unit of work factory over a migrated store whose
// units flush to bus
type FactoryBuilder func(t *testing.T, bus *events.Bus) service.UnitOfWorkFactory

// RunLedgerSuite exercises a ledger store implementation through the unit of
// work. Every backend must pass it unchanged.
func RunLedgerSuite(t *testing.T, build FactoryBuilder) {
	bus := events.NewBus()
	factory := build(t, bus)
	ctx := context.Background()

	// inTx runs fn in its own unit of work and commits it
	inTx := func(t *testing.T, fn func(uow service.UnitOfWork)) {
		t.Helper()
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		fn(uow)
		require.NoError(t, uow.Commit())
	}

	t.Run("missing balance is nil", func(t *testing.T) {
		inTx(t, func(uow service.UnitOfWork) {
			balance, err := uow.BalanceRepository().GetBalance(ctx, 1001)
			require.NoError(t, err)
			assert.Nil(t, balance)
		})
	})

	t.Run("init balance only inserts once", func(t *testing.T) {
		inTx(t, func(uow service.UnitOfWork) {
			created, err := uow.BalanceRepository().InitBalance(ctx, 1002, 500)
			require.NoError(t, err)
			assert.True(t, created)

			created, err = uow.BalanceRepository().InitBalance(ctx, 1002, 900)
			require.NoError(t, err)
			assert.False(t, created)

			balance, err := uow.BalanceRepository().GetBalance(ctx, 1002)
			require.NoError(t, err)
			require.NotNil(t, balance)
			assert.Equal(t, int64(500), balance.Coin)
			assert.False(t, balance.UpdatedAt.IsZero())
		})
	})

	t.Run("add balance treats missing row as zero", func(t *testing.T) {
		inTx(t, func(uow service.UnitOfWork) {
			coin, err := uow.BalanceRepository().AddBalance(ctx, 1003, 25)
			require.NoError(t, err)
			assert.Equal(t, int64(25), coin)

			coin, err = uow.BalanceRepository().AddBalance(ctx, 1003, -40)
			require.NoError(t, err)
			assert.Equal(t, int64(-15), coin)
		})
	})

	t.Run("set and delete balance", func(t *testing.T) {
		inTx(t, func(uow service.UnitOfWork) {
			repo := uow.BalanceRepository()
			require.NoError(t, repo.SetBalance(ctx, 1004, 10))
			require.NoError(t, repo.SetBalance(ctx, 1004, 70))

			balance, err := repo.GetBalance(ctx, 1004)
			require.NoError(t, err)
			require.NotNil(t, balance)
			assert.Equal(t, int64(70), balance.Coin)

			require.NoError(t, repo.DeleteBalance(ctx, 1004))
			balance, err = repo.GetBalance(ctx, 1004)
			require.NoError(t, err)
			assert.Nil(t, balance)
		})
	})

	t.Run("rankings are ascending", func(t *testing.T) {
		inTx(t, func(uow service.UnitOfWork) {
			repo := uow.BalanceRepository()
			require.NoError(t, repo.SetBalance(ctx, 2001, 300))
			require.NoError(t, repo.SetBalance(ctx, 2002, -50))
			require.NoError(t, repo.SetBalance(ctx, 2003, 120))

			rankings, err := repo.ListRankings(ctx)
			require.NoError(t, err)

			var ours []int64
			for _, balance := range rankings {
				if balance.MemberID >= 2001 && balance.MemberID <= 2003 {
					ours = append(ours, balance.MemberID)
				}
			}
			assert.Equal(t, []int64{2002, 2003, 2001}, ours)

			for i := 1; i < len(rankings); i++ {
				assert.LessOrEqual(t, rankings[i-1].Coin, rankings[i].Coin)
			}
		})
	})

	t.Run("list since orders by delta and honours the window", func(t *testing.T) {
		now := time.Now().UTC()
		since := now.Add(-time.Hour)

		inTx(t, func(uow service.UnitOfWork) {
			repo := uow.TransactionRepository()
			entries := []*models.Transaction{
				CreateTestTransaction(3001, -10, now.Add(-30*time.Minute)),
				CreateTestTransaction(3001, -300, now.Add(-20*time.Minute)),
				CreateTestTransaction(3002, 40, now.Add(-10*time.Minute)),
				CreateTestTransaction(3002, -5, now.Add(-5*time.Minute)),
				CreateTestTransaction(3003, -999, now.Add(-48*time.Hour)),
			}
			for _, entry := range entries {
				require.NoError(t, repo.Append(ctx, entry))
				assert.NotZero(t, entry.ID)
			}

			txs, err := repo.ListSince(ctx, since)
			require.NoError(t, err)

			var ours []int64
			for _, tx := range txs {
				if tx.MemberID >= 3001 && tx.MemberID <= 3003 {
					ours = append(ours, tx.Delta)
				}
			}
			assert.Equal(t, []int64{-300, -10, -5, 40}, ours)
		})
	})

	t.Run("list by member newest first", func(t *testing.T) {
		base := time.Now().UTC().Add(-time.Hour)

		inTx(t, func(uow service.UnitOfWork) {
			repo := uow.TransactionRepository()
			for i := int64(1); i <= 4; i++ {
				require.NoError(t, repo.Append(ctx, CreateTestTransaction(4001, i, base.Add(time.Duration(i)*time.Minute))))
			}

			txs, err := repo.ListByMember(ctx, 4001, 3)
			require.NoError(t, err)
			assert.Equal(t, []int64{4, 3, 2}, Deltas(txs))
		})
	})

	t.Run("delete by member removes only that member", func(t *testing.T) {
		inTx(t, func(uow service.UnitOfWork) {
			repo := uow.TransactionRepository()
			require.NoError(t, repo.Append(ctx, &models.Transaction{MemberID: 5001, Delta: 1}))
			require.NoError(t, repo.Append(ctx, &models.Transaction{MemberID: 5001, Delta: 2}))
			require.NoError(t, repo.Append(ctx, &models.Transaction{MemberID: 5002, Delta: 3}))

			removed, err := repo.DeleteByMember(ctx, 5001)
			require.NoError(t, err)
			assert.Equal(t, int64(2), removed)

			remaining, err := repo.ListByMember(ctx, 5002, 10)
			require.NoError(t, err)
			assert.Len(t, remaining, 1)
		})
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		delivered := make(chan events.Event, 1)
		bus.Subscribe(events.EventTypeBalanceCleared, func(ctx context.Context, event events.Event) {
			if cleared, ok := event.(events.BalanceClearedEvent); ok && cleared.MemberID == 6001 {
				delivered <- event
			}
		})

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		_, err := uow.BalanceRepository().AddBalance(ctx, 6001, 100)
		require.NoError(t, err)
		uow.EventBus().Publish(events.BalanceClearedEvent{MemberID: 6001})
		require.NoError(t, uow.Rollback())

		inTx(t, func(uow service.UnitOfWork) {
			balance, err := uow.BalanceRepository().GetBalance(ctx, 6001)
			require.NoError(t, err)
			assert.Nil(t, balance)
		})

		select {
		case <-delivered:
			t.Fatal("event published inside a rolled back unit of work was delivered")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("commit flushes events", func(t *testing.T) {
		delivered := make(chan events.BalanceVerifiedEvent, 1)
		bus.Subscribe(events.EventTypeBalanceVerified, func(ctx context.Context, event events.Event) {
			if verified, ok := event.(events.BalanceVerifiedEvent); ok && verified.MemberID == 6002 {
				delivered <- verified
			}
		})

		inTx(t, func(uow service.UnitOfWork) {
			uow.EventBus().Publish(events.BalanceVerifiedEvent{MemberID: 6002, Balance: 5})
		})

		select {
		case event := <-delivered:
			assert.Equal(t, int64(5), event.Balance)
		case <-time.After(2 * time.Second):
			t.Fatal("event was not delivered after commit")
		}
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				uow := factory.Create()
				if !assert.NoError(t, uow.Begin(ctx)) {
					return
				}
				defer uow.Rollback()
				_, err := uow.BalanceRepository().AddBalance(ctx, 7001, 1)
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, uow.Commit())
			}()
		}
		wg.Wait()

		inTx(t, func(uow service.UnitOfWork) {
			balance, err := uow.BalanceRepository().GetBalance(ctx, 7001)
			require.NoError(t, err)
			require.NotNil(t, balance)
			assert.Equal(t, int64(writers), balance.Coin)
		})
	})
}
