package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"cactuscoin/events"
	"cactuscoin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type economyMocks struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	balances  *MockBalanceRepository
	ledger    *MockTransactionRepository
	publisher *MockEventPublisher
}

func newEconomyMocks() *economyMocks {
	m := &economyMocks{
		factory:   new(MockUnitOfWorkFactory),
		uow:       new(MockUnitOfWork),
		balances:  new(MockBalanceRepository),
		ledger:    new(MockTransactionRepository),
		publisher: new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.balances, m.ledger, m.publisher)
	m.factory.On("Create").Return(m.uow)
	return m
}

func (m *economyMocks) assertExpectations(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.balances.AssertExpectations(t)
	m.ledger.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestEconomyService_VerifyBalance_ExistingBalance(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.balances.On("GetBalance", ctx, int64(42)).Return(&models.Balance{MemberID: 42, Coin: 200}, nil)
	m.publisher.On("Publish", events.BalanceVerifiedEvent{GuildID: 7, MemberID: 42, Balance: 200}).Return()

	coin, err := service.VerifyBalance(ctx, 7, 42, 1000)

	require.NoError(t, err)
	assert.Equal(t, int64(200), coin)
	m.assertExpectations(t)
	m.balances.AssertNotCalled(t, "InitBalance", mock.Anything, mock.Anything, mock.Anything)
	m.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestEconomyService_VerifyBalance_NewMember(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.balances.On("GetBalance", ctx, int64(42)).Return(nil, nil)
	m.balances.On("InitBalance", ctx, int64(42), int64(1000)).Return(true, nil)
	m.publisher.On("Publish", events.BalanceVerifiedEvent{GuildID: 7, MemberID: 42, Balance: 1000, Created: true}).Return()

	coin, err := service.VerifyBalance(ctx, 7, 42, 1000)

	require.NoError(t, err)
	assert.Equal(t, int64(1000), coin)
	m.assertExpectations(t)
	m.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestEconomyService_VerifyBalance_LostInitRace(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.balances.On("GetBalance", ctx, int64(42)).Return(nil, nil).Once()
	m.balances.On("InitBalance", ctx, int64(42), int64(1000)).Return(false, nil)
	m.balances.On("GetBalance", ctx, int64(42)).Return(&models.Balance{MemberID: 42, Coin: 1000}, nil).Once()
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceVerifiedEvent")).Return()

	coin, err := service.VerifyBalance(ctx, 7, 42, 1000)

	require.NoError(t, err)
	assert.Equal(t, int64(1000), coin)
	m.assertExpectations(t)
}

func TestEconomyService_VerifyBalance_StorageFailure(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.balances.On("GetBalance", ctx, int64(42)).Return(nil, errors.New("disk full"))

	_, err := service.VerifyBalance(ctx, 7, 42, 1000)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	m.uow.AssertNotCalled(t, "Commit")
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestEconomyService_AdjustBalance_PersistAppendsRawDelta(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("Append", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.MemberID == 42 && tx.Delta == -30
	})).Return(nil)
	m.balances.On("AddBalance", ctx, int64(42), int64(-30)).Return(int64(70), nil)
	m.publisher.On("Publish", events.BalanceChangeEvent{
		GuildID:    7,
		MemberID:   42,
		OldBalance: 100,
		NewBalance: 70,
		Delta:      -30,
		Persisted:  true,
	}).Return()

	coin, err := service.AdjustBalance(ctx, 7, 42, -30, true)

	require.NoError(t, err)
	assert.Equal(t, int64(70), coin)
	m.assertExpectations(t)
}

func TestEconomyService_AdjustBalance_WithoutPersist(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.balances.On("AddBalance", ctx, int64(42), int64(50)).Return(int64(50), nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	coin, err := service.AdjustBalance(ctx, 7, 42, 50, false)

	require.NoError(t, err)
	assert.Equal(t, int64(50), coin)
	m.assertExpectations(t)
	m.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestEconomyService_AdjustBalance_AppendFailureAbortsUpdate(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("Append", ctx, mock.Anything).Return(errors.New("locked"))

	_, err := service.AdjustBalance(ctx, 7, 42, 10, true)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	m.balances.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestEconomyService_AdjustBalance_AmountOverLimit(t *testing.T) {
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	for _, delta := range []int64{MaxCoin + 1, -MaxCoin - 1, math.MinInt64} {
		_, err := service.AdjustBalance(context.Background(), 7, 42, delta, true)
		assert.True(t, IsValidationError(err), "delta %d", delta)
	}

	m.factory.AssertNotCalled(t, "Create")
}

func TestEconomyService_AdjustBalance_ResultOverLimitRollsBack(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("Append", ctx, mock.Anything).Return(nil)
	m.balances.On("AddBalance", ctx, int64(42), int64(20)).Return(MaxCoin+10, nil)

	_, err := service.AdjustBalance(ctx, 7, 42, 20, true)

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.NotErrorIs(t, err, ErrStorage)
	m.uow.AssertNotCalled(t, "Commit")
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestEconomyService_AdjustBalance_TowardZeroBeyondLimitAllowed(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("Append", ctx, mock.Anything).Return(nil)
	m.balances.On("AddBalance", ctx, int64(42), int64(-100)).Return(MaxCoin+900, nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	coin, err := service.AdjustBalance(ctx, 7, 42, -100, true)

	require.NoError(t, err)
	assert.Equal(t, MaxCoin+900, coin)
	m.assertExpectations(t)
}

func TestEconomyService_ClearBalance(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("DeleteByMember", ctx, int64(42)).Return(int64(3), nil)
	m.balances.On("DeleteBalance", ctx, int64(42)).Return(nil)
	m.publisher.On("Publish", events.BalanceClearedEvent{GuildID: 7, MemberID: 42}).Return()

	err := service.ClearBalance(ctx, 7, 42)

	require.NoError(t, err)
	m.assertExpectations(t)
}

func TestEconomyService_ResetBalance(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.balances.On("GetBalance", ctx, int64(42)).Return(&models.Balance{MemberID: 42, Coin: 1500}, nil)
	m.ledger.On("Append", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.MemberID == 42 && tx.Delta == -500
	})).Return(nil)
	m.balances.On("AddBalance", ctx, int64(42), int64(-500)).Return(int64(1000), nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	coin, err := service.ResetBalance(ctx, 7, 42, 1000)

	require.NoError(t, err)
	assert.Equal(t, int64(1000), coin)
	m.assertExpectations(t)
}

func TestEconomyService_Transfer_Validation(t *testing.T) {
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	tests := []struct {
		name   string
		fromID int64
		toID   int64
		amount int64
	}{
		{name: "zero amount", fromID: 1, toID: 2, amount: 0},
		{name: "negative amount", fromID: 1, toID: 2, amount: -5},
		{name: "self transfer", fromID: 1, toID: 1, amount: 5},
		{name: "amount over limit", fromID: 1, toID: 2, amount: math.MaxInt64 - 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.Transfer(context.Background(), 7, tt.fromID, tt.toID, tt.amount)
			assert.Nil(t, result)
			assert.True(t, IsValidationError(err))
		})
	}

	m.factory.AssertNotCalled(t, "Create")
}

func TestEconomyService_Transfer(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("Append", ctx, mock.AnythingOfType("*models.Transaction")).Return(nil).Twice()
	m.balances.On("AddBalance", ctx, int64(2), int64(25)).Return(int64(125), nil)
	m.balances.On("AddBalance", ctx, int64(1), int64(-25)).Return(int64(75), nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return().Twice()

	result, err := service.Transfer(ctx, 7, 1, 2, 25)

	require.NoError(t, err)
	assert.Equal(t, &models.TransferResult{Amount: 25, FromBalance: 75, ToBalance: 125}, result)
	m.assertExpectations(t)
}

func TestEconomyService_SettleWager_TwoPairedTransactions(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	var appended []int64
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("Append", ctx, mock.AnythingOfType("*models.Transaction")).
		Run(func(args mock.Arguments) {
			appended = append(appended, args.Get(1).(*models.Transaction).Delta)
		}).Return(nil)
	m.balances.On("AddBalance", ctx, int64(1), int64(50)).Return(int64(150), nil)
	m.balances.On("AddBalance", ctx, int64(2), int64(-50)).Return(int64(50), nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	err := service.SettleWager(ctx, 7, 1, 2, 50)

	require.NoError(t, err)
	assert.Equal(t, []int64{50, -50}, appended)
	m.uow.AssertNumberOfCalls(t, "Commit", 1)
}

func TestEconomyService_SettleWager_LoserFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	m := newEconomyMocks()
	service := NewEconomyService(m.factory, time.UTC)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.ledger.On("Append", ctx, mock.AnythingOfType("*models.Transaction")).Return(nil).Once()
	m.balances.On("AddBalance", ctx, int64(1), int64(50)).Return(int64(150), nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()
	m.ledger.On("Append", ctx, mock.AnythingOfType("*models.Transaction")).Return(errors.New("io")).Once()

	err := service.SettleWager(ctx, 7, 1, 2, 50)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	m.uow.AssertNotCalled(t, "Commit")
	m.uow.AssertCalled(t, "Rollback")
}

func TestEconomyService_Movements(t *testing.T) {
	ctx := context.Background()

	ledger := []*models.Transaction{
		{ID: 1, Delta: -300},
		{ID: 2, Delta: -10},
		{ID: 3, Delta: -5},
		{ID: 4, Delta: 1},
		{ID: 5, Delta: 2},
		{ID: 6, Delta: 3},
		{ID: 7, Delta: 4},
		{ID: 8, Delta: 5},
		{ID: 9, Delta: 600},
	}

	t.Run("losses keep ascending order", func(t *testing.T) {
		m := newEconomyMocks()
		service := NewEconomyService(m.factory, time.UTC)
		m.uow.On("Begin", ctx).Return(nil)
		m.uow.On("Rollback").Return(nil)
		m.ledger.On("ListSince", ctx, mock.AnythingOfType("time.Time")).Return(ledger, nil)

		losses, err := service.Movements(ctx, models.WindowMonth, false)

		require.NoError(t, err)
		require.Len(t, losses, 3)
		assert.Equal(t, int64(-300), losses[0].Delta)
		assert.Equal(t, int64(-10), losses[1].Delta)
		assert.Equal(t, int64(-5), losses[2].Delta)
	})

	t.Run("gains take the smallest positive deltas", func(t *testing.T) {
		m := newEconomyMocks()
		service := NewEconomyService(m.factory, time.UTC)
		m.uow.On("Begin", ctx).Return(nil)
		m.uow.On("Rollback").Return(nil)
		m.ledger.On("ListSince", ctx, mock.AnythingOfType("time.Time")).Return(ledger, nil)

		gains, err := service.Movements(ctx, models.WindowYear, true)

		require.NoError(t, err)
		require.Len(t, gains, 5)
		for i, tx := range gains {
			assert.Equal(t, int64(i+1), tx.Delta)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		m := newEconomyMocks()
		service := NewEconomyService(m.factory, time.UTC)
		m.uow.On("Begin", ctx).Return(nil)
		m.uow.On("Rollback").Return(nil)
		m.ledger.On("ListSince", ctx, mock.AnythingOfType("time.Time")).Return([]*models.Transaction{{Delta: 10}}, nil)

		losses, err := service.Movements(ctx, models.WindowWeek, false)

		require.NoError(t, err)
		assert.Empty(t, losses)
	})

	t.Run("unknown window", func(t *testing.T) {
		m := newEconomyMocks()
		service := NewEconomyService(m.factory, time.UTC)

		_, err := service.Movements(ctx, models.Window("decade"), true)

		assert.True(t, IsValidationError(err))
		m.factory.AssertNotCalled(t, "Create")
	})
}

func TestSelectMovements_TailOfManyLosses(t *testing.T) {
	var txs []*models.Transaction
	for delta := int64(-8); delta <= -1; delta++ {
		txs = append(txs, &models.Transaction{Delta: delta})
	}

	losses := selectMovements(txs, false)

	require.Len(t, losses, 5)
	assert.Equal(t, int64(-5), losses[0].Delta)
	assert.Equal(t, int64(-1), losses[4].Delta)
}
