package service

import (
	"context"
	"time"

	"cactuscoin/events"
	"cactuscoin/models"
)

// BalanceRepository defines the interface for member balance access
type BalanceRepository interface {
	// GetBalance returns nil when the member has no balance row
	GetBalance(ctx context.Context, memberID int64) (*models.Balance, error)

	// InitBalance inserts a balance only if none exists and reports whether it did
	InitBalance(ctx context.Context, memberID int64, coin int64) (bool, error)

	// SetBalance overwrites (or creates) a member's balance
	SetBalance(ctx context.Context, memberID int64, coin int64) error

	// AddBalance atomically increments a balance, treating a missing row as zero,
	// and returns the resulting coin
	AddBalance(ctx context.Context, memberID int64, delta int64) (int64, error)

	// DeleteBalance removes a member's balance row
	DeleteBalance(ctx context.Context, memberID int64) error

	// ListRankings returns all balances ordered by coin ascending
	ListRankings(ctx context.Context) ([]*models.Balance, error)
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Append records a new transaction and fills in its ID and timestamp
	Append(ctx context.Context, tx *models.Transaction) error

	// ListSince returns transactions created at or after since, ordered by delta
	// ascending with ties broken by creation time
	ListSince(ctx context.Context, since time.Time) ([]*models.Transaction, error)

	// ListByMember returns a member's transactions, newest first
	ListByMember(ctx context.Context, memberID int64, limit int) ([]*models.Transaction, error)

	// DeleteByMember removes a member's entire history
	DeleteByMember(ctx context.Context, memberID int64) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes queued events
	Commit() error

	// Rollback rolls back the transaction; it is a no-op after Commit
	Rollback() error

	BalanceRepository() BalanceRepository
	TransactionRepository() TransactionRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// EconomyService owns every mutation of member balances
type EconomyService interface {
	// VerifyBalance initialises a member to defaultCoin unless a balance already
	// exists, and returns the effective balance
	VerifyBalance(ctx context.Context, guildID, memberID int64, defaultCoin int64) (int64, error)

	// AdjustBalance applies delta and, when persist is set, appends a transaction
	AdjustBalance(ctx context.Context, guildID, memberID int64, delta int64, persist bool) (int64, error)

	// ClearBalance removes a member's balance and transaction history
	ClearBalance(ctx context.Context, guildID, memberID int64) error

	// ResetBalance returns a member to defaultCoin through a persisted adjustment
	ResetBalance(ctx context.Context, guildID, memberID int64, defaultCoin int64) (int64, error)

	// Transfer moves amount from one member to another in a single unit of work
	Transfer(ctx context.Context, guildID, fromID, toID int64, amount int64) (*models.TransferResult, error)

	// SettleWager credits the winner and debits the loser in a single unit of work
	SettleWager(ctx context.Context, guildID, winnerID, loserID int64, amount int64) error

	// GetBalance returns nil when the member has never been verified
	GetBalance(ctx context.Context, memberID int64) (*models.Balance, error)

	// Rankings returns all balances ordered by coin ascending
	Rankings(ctx context.Context) ([]*models.Balance, error)

	// Movements returns up to five of the window's gains or losses
	Movements(ctx context.Context, window models.Window, wantGains bool) ([]*models.Transaction, error)
}

// WagerSettler is the part of the economy the wager machine depends on
type WagerSettler interface {
	SettleWager(ctx context.Context, guildID, winnerID, loserID int64, amount int64) error
}

// WagerService runs two-party wagers from proposal to settlement
type WagerService interface {
	// ProposeWager validates the proposal and starts its state machine
	ProposeWager(ctx context.Context, guildID, proposerID, counterpartyID int64, amount int64, reason string) (*WagerHandle, error)

	// GetWager returns a live wager by ID, or nil once it has terminated
	GetWager(id string) *WagerHandle

	// ActiveCount returns the number of wagers that have not terminated
	ActiveCount() int
}
