package service

import (
	"context"
	"fmt"

	"cactuscoin/events"
	"cactuscoin/models"
)

// MaxCoin bounds a single amount and any balance an amount can push toward
const MaxCoin int64 = 1_000_000_000_000

func beyondLimit(coin int64) bool {
	return coin > MaxCoin || coin < -MaxCoin
}

// checkAmount rejects user supplied amounts outside ±MaxCoin
func checkAmount(field string, amount int64) error {
	if beyondLimit(amount) {
		return newValidationError(field, fmt.Sprintf("Amounts are limited to %d coin.", MaxCoin))
	}
	return nil
}

// applyDelta is the single entry point for balance mutations inside a unit of
// work. When persist is set the raw delta is appended to the ledger before the
// balance is updated. It returns the resulting balance. A change that leaves the
// balance beyond ±MaxCoin and further from zero is rejected; the caller's
// rollback discards the appended row.
func applyDelta(ctx context.Context, uow UnitOfWork, guildID, memberID int64, delta int64, persist bool) (int64, error) {
	if persist {
		tx := &models.Transaction{
			MemberID: memberID,
			Delta:    delta,
		}
		if err := uow.TransactionRepository().Append(ctx, tx); err != nil {
			return 0, storageError("append transaction", err)
		}
	}

	newCoin, err := uow.BalanceRepository().AddBalance(ctx, memberID, delta)
	if err != nil {
		return 0, storageError("update balance", err)
	}
	if beyondLimit(newCoin) && delta != 0 && (delta > 0) == (newCoin > 0) {
		return 0, newValidationError("amount", fmt.Sprintf("Balances are limited to %d coin.", MaxCoin))
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:    guildID,
		MemberID:   memberID,
		OldBalance: newCoin - delta,
		NewBalance: newCoin,
		Delta:      delta,
		Persisted:  persist,
	})

	return newCoin, nil
}
