package service

import (
	"context"
	"time"

	"cactuscoin/events"
	"cactuscoin/models"

	"github.com/stretchr/testify/mock"
)

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetBalance(ctx context.Context, memberID int64) (*models.Balance, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) InitBalance(ctx context.Context, memberID int64, coin int64) (bool, error) {
	args := m.Called(ctx, memberID, coin)
	return args.Bool(0), args.Error(1)
}

func (m *MockBalanceRepository) SetBalance(ctx context.Context, memberID int64, coin int64) error {
	args := m.Called(ctx, memberID, coin)
	return args.Error(0)
}

func (m *MockBalanceRepository) AddBalance(ctx context.Context, memberID int64, delta int64) (int64, error) {
	args := m.Called(ctx, memberID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) DeleteBalance(ctx context.Context, memberID int64) error {
	args := m.Called(ctx, memberID)
	return args.Error(0)
}

func (m *MockBalanceRepository) ListRankings(ctx context.Context) ([]*models.Balance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Balance), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListSince(ctx context.Context, since time.Time) ([]*models.Transaction, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByMember(ctx context.Context, memberID int64, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) DeleteByMember(ctx context.Context, memberID int64) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return whatever was configured through SetRepositories.
type MockUnitOfWork struct {
	mock.Mock
	balanceRepo     BalanceRepository
	transactionRepo TransactionRepository
	eventBus        EventPublisher
}

// SetRepositories configures the repositories handed out by the unit of work
func (m *MockUnitOfWork) SetRepositories(balanceRepo BalanceRepository, transactionRepo TransactionRepository, eventBus EventPublisher) {
	m.balanceRepo = balanceRepo
	m.transactionRepo = transactionRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) BalanceRepository() BalanceRepository {
	return m.balanceRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockWagerSettler is a mock implementation of WagerSettler
type MockWagerSettler struct {
	mock.Mock
}

func (m *MockWagerSettler) SettleWager(ctx context.Context, guildID, winnerID, loserID int64, amount int64) error {
	args := m.Called(ctx, guildID, winnerID, loserID, amount)
	return args.Error(0)
}
