package service_test

import (
	"context"
	"math"
	"testing"
	"time"

	"cactuscoin/database"
	"cactuscoin/events"
	"cactuscoin/models"
	"cactuscoin/repository/sqlite"
	"cactuscoin/repository/testutil"
	"cactuscoin/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID   int64 = 1
	memberX   int64 = 10
	proposerA int64 = 20
	opponentB int64 = 30
)

type ledgerFixture struct {
	db      *database.SQLiteDB
	economy service.EconomyService
	wagers  service.WagerService
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := testutil.SetupSQLiteDatabase(t)
	bus := events.NewBus()
	economy := service.NewEconomyService(sqlite.NewUnitOfWorkFactory(db, bus), time.UTC)
	return &ledgerFixture{
		db:      db,
		economy: economy,
		wagers: service.NewWagerService(economy, bus, service.WagerConfig{
			ConfirmTimeout: 2 * time.Second,
			OutcomeTimeout: 2 * time.Second,
		}),
	}
}

func (f *ledgerFixture) coin(t *testing.T, memberID int64) int64 {
	t.Helper()
	balance, err := f.economy.GetBalance(context.Background(), memberID)
	require.NoError(t, err)
	require.NotNil(t, balance)
	return balance.Coin
}

func (f *ledgerFixture) history(t *testing.T, memberID int64) []*models.Transaction {
	t.Helper()
	txs, err := sqlite.NewTransactionRepository(f.db).ListByMember(context.Background(), memberID, 100)
	require.NoError(t, err)
	return txs
}

func TestEconomy_VerifyThenAdjust(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	coin, err := f.economy.VerifyBalance(ctx, guildID, memberX, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), coin)
	assert.Equal(t, int64(500), f.coin(t, memberX))

	// verifying again never overwrites
	coin, err = f.economy.VerifyBalance(ctx, guildID, memberX, 900)
	require.NoError(t, err)
	assert.Equal(t, int64(500), coin)

	coin, err = f.economy.AdjustBalance(ctx, guildID, memberX, 100, true)
	require.NoError(t, err)
	assert.Equal(t, int64(600), coin)

	txs := f.history(t, memberX)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(100), txs[0].Delta)
	assert.Equal(t, memberX, txs[0].MemberID)
}

func TestEconomy_AdjustWithoutPersistLeavesNoHistory(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.economy.AdjustBalance(ctx, guildID, memberX, -25, false)
	require.NoError(t, err)

	assert.Equal(t, int64(-25), f.coin(t, memberX))
	assert.Empty(t, f.history(t, memberX))
}

func TestEconomy_ClearAndReset(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.economy.VerifyBalance(ctx, guildID, memberX, 500)
	require.NoError(t, err)
	_, err = f.economy.AdjustBalance(ctx, guildID, memberX, 250, true)
	require.NoError(t, err)

	coin, err := f.economy.ResetBalance(ctx, guildID, memberX, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), coin)
	assert.Equal(t, []int64{-250, 250}, testutil.Deltas(f.history(t, memberX)))

	require.NoError(t, f.economy.ClearBalance(ctx, guildID, memberX))
	balance, err := f.economy.GetBalance(ctx, memberX)
	require.NoError(t, err)
	assert.Nil(t, balance)
	assert.Empty(t, f.history(t, memberX))
}

func TestEconomy_TransferConservesCoin(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.economy.VerifyBalance(ctx, guildID, proposerA, 500)
	require.NoError(t, err)
	_, err = f.economy.VerifyBalance(ctx, guildID, opponentB, 500)
	require.NoError(t, err)

	result, err := f.economy.Transfer(ctx, guildID, proposerA, opponentB, 75)
	require.NoError(t, err)
	assert.Equal(t, int64(425), result.FromBalance)
	assert.Equal(t, int64(575), result.ToBalance)
	assert.Equal(t, int64(1000), f.coin(t, proposerA)+f.coin(t, opponentB))
}

func TestEconomy_TransferBeyondCoinLimitIsRejected(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.economy.VerifyBalance(ctx, guildID, proposerA, 500)
	require.NoError(t, err)
	_, err = f.economy.VerifyBalance(ctx, guildID, opponentB, 500)
	require.NoError(t, err)

	_, err = f.economy.Transfer(ctx, guildID, proposerA, opponentB, math.MaxInt64-500)
	assert.True(t, service.IsValidationError(err))
	assert.NotErrorIs(t, err, service.ErrStorage)
	assert.Equal(t, int64(500), f.coin(t, opponentB))

	// fill the recipient up to the limit, then one more coin
	_, err = f.economy.Transfer(ctx, guildID, proposerA, opponentB, service.MaxCoin-500)
	require.NoError(t, err)
	assert.Equal(t, service.MaxCoin, f.coin(t, opponentB))

	_, err = f.economy.Transfer(ctx, guildID, proposerA, opponentB, 1)
	assert.True(t, service.IsValidationError(err))
	assert.NotErrorIs(t, err, service.ErrStorage)

	assert.Equal(t, service.MaxCoin, f.coin(t, opponentB))
	assert.Equal(t, int64(1000), f.coin(t, proposerA)+f.coin(t, opponentB))
	assert.Len(t, f.history(t, opponentB), 1)
}

func TestWager_DeclineLeavesLedgerUntouched(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	handle, err := f.wagers.ProposeWager(ctx, guildID, proposerA, opponentB, 50, "darts")
	require.NoError(t, err)
	require.True(t, handle.Respond(opponentB, false))

	outcome, err := handle.AwaitOutcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.WagerStateDeclined, outcome.State)
	assert.Empty(t, f.history(t, proposerA))
	assert.Empty(t, f.history(t, opponentB))
}

func TestWager_SettlementMovesStake(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.economy.VerifyBalance(ctx, guildID, proposerA, 500)
	require.NoError(t, err)
	_, err = f.economy.VerifyBalance(ctx, guildID, opponentB, 500)
	require.NoError(t, err)

	handle, err := f.wagers.ProposeWager(ctx, guildID, proposerA, opponentB, 50, "pool")
	require.NoError(t, err)
	require.True(t, handle.Respond(opponentB, true))

	confirmed, err := handle.AwaitConfirmation(ctx)
	require.NoError(t, err)
	require.True(t, confirmed)
	require.True(t, handle.PickWinner(opponentB, proposerA))

	outcome, err := handle.AwaitOutcome(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.WagerStateSettled, outcome.State)
	assert.Equal(t, proposerA, outcome.WinnerID)

	assert.Equal(t, int64(550), f.coin(t, proposerA))
	assert.Equal(t, int64(450), f.coin(t, opponentB))
	assert.Equal(t, []int64{50}, testutil.Deltas(f.history(t, proposerA)))
	assert.Equal(t, []int64{-50}, testutil.Deltas(f.history(t, opponentB)))
}

func TestEconomy_MonthlyLosses(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	for _, delta := range []int64{-10, -300, -5, 40} {
		_, err := f.economy.AdjustBalance(ctx, guildID, memberX, delta, true)
		require.NoError(t, err)
	}

	losses, err := f.economy.Movements(ctx, models.WindowMonth, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{-300, -10, -5}, testutil.Deltas(losses))

	gains, err := f.economy.Movements(ctx, models.WindowMonth, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{40}, testutil.Deltas(gains))
}
