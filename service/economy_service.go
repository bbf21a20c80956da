package service

import (
	"context"
	"fmt"
	"time"

	"cactuscoin/events"
	"cactuscoin/models"

	log "github.com/sirupsen/logrus"
)

// movementLimit caps the number of entries returned by Movements
const movementLimit = 5

type economyService struct {
	uowFactory UnitOfWorkFactory
	location   *time.Location
	now        func() time.Time
}

// NewEconomyService creates a new economy service. Movement windows are
// computed in location; nil means the process local time zone.
func NewEconomyService(uowFactory UnitOfWorkFactory, location *time.Location) EconomyService {
	if location == nil {
		location = time.Local
	}
	return &economyService{
		uowFactory: uowFactory,
		location:   location,
		now:        time.Now,
	}
}

func (s *economyService) VerifyBalance(ctx context.Context, guildID, memberID int64, defaultCoin int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	existing, err := uow.BalanceRepository().GetBalance(ctx, memberID)
	if err != nil {
		return 0, storageError("get balance", err)
	}

	created := false
	coin := defaultCoin
	if existing != nil {
		log.WithFields(log.Fields{
			"memberID": memberID,
			"coin":     existing.Coin,
		}).Debug("Found existing balance")
		coin = existing.Coin
	} else {
		created, err = uow.BalanceRepository().InitBalance(ctx, memberID, defaultCoin)
		if err != nil {
			return 0, storageError("initialize balance", err)
		}
		if !created {
			// another writer initialised the row first; its value wins
			existing, err = uow.BalanceRepository().GetBalance(ctx, memberID)
			if err != nil {
				return 0, storageError("get balance", err)
			}
			if existing != nil {
				coin = existing.Coin
			}
		}
	}

	uow.EventBus().Publish(events.BalanceVerifiedEvent{
		GuildID:  guildID,
		MemberID: memberID,
		Balance:  coin,
		Created:  created,
	})

	if err := uow.Commit(); err != nil {
		return 0, storageError("commit transaction", err)
	}

	if created {
		log.WithFields(log.Fields{
			"memberID": memberID,
			"coin":     coin,
		}).Info("Initialized member balance")
	}

	return coin, nil
}

func (s *economyService) AdjustBalance(ctx context.Context, guildID, memberID int64, delta int64, persist bool) (int64, error) {
	if err := checkAmount("amount", delta); err != nil {
		return 0, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	newCoin, err := applyDelta(ctx, uow, guildID, memberID, delta, persist)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, storageError("commit transaction", err)
	}

	log.WithFields(log.Fields{
		"memberID": memberID,
		"delta":    delta,
		"persist":  persist,
		"balance":  newCoin,
	}).Info("Adjusted member balance")

	return newCoin, nil
}

func (s *economyService) ClearBalance(ctx context.Context, guildID, memberID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return storageError("begin transaction", err)
	}
	defer uow.Rollback()

	removed, err := uow.TransactionRepository().DeleteByMember(ctx, memberID)
	if err != nil {
		return storageError("delete transactions", err)
	}

	if err := uow.BalanceRepository().DeleteBalance(ctx, memberID); err != nil {
		return storageError("delete balance", err)
	}

	uow.EventBus().Publish(events.BalanceClearedEvent{
		GuildID:  guildID,
		MemberID: memberID,
	})

	if err := uow.Commit(); err != nil {
		return storageError("commit transaction", err)
	}

	log.WithFields(log.Fields{
		"memberID":            memberID,
		"removedTransactions": removed,
	}).Info("Cleared member balance")

	return nil
}

func (s *economyService) ResetBalance(ctx context.Context, guildID, memberID int64, defaultCoin int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	var current int64
	existing, err := uow.BalanceRepository().GetBalance(ctx, memberID)
	if err != nil {
		return 0, storageError("get balance", err)
	}
	if existing != nil {
		current = existing.Coin
	}

	newCoin, err := applyDelta(ctx, uow, guildID, memberID, defaultCoin-current, true)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, storageError("commit transaction", err)
	}

	return newCoin, nil
}

func (s *economyService) Transfer(ctx context.Context, guildID, fromID, toID int64, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, newValidationError("amount", "transfer amount must be positive")
	}
	if fromID == toID {
		return nil, newValidationError("recipient", "cannot transfer to yourself")
	}
	if err := checkAmount("amount", amount); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	toBalance, err := applyDelta(ctx, uow, guildID, toID, amount, true)
	if err != nil {
		return nil, err
	}

	fromBalance, err := applyDelta(ctx, uow, guildID, fromID, -amount, true)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, storageError("commit transaction", err)
	}

	return &models.TransferResult{
		Amount:      amount,
		FromBalance: fromBalance,
		ToBalance:   toBalance,
	}, nil
}

func (s *economyService) SettleWager(ctx context.Context, guildID, winnerID, loserID int64, amount int64) error {
	if amount <= 0 {
		return newValidationError("amount", "wager amount must be positive")
	}
	if winnerID == loserID {
		return newValidationError("winner", "winner and loser must differ")
	}
	if err := checkAmount("amount", amount); err != nil {
		return err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return storageError("begin transaction", err)
	}
	defer uow.Rollback()

	if _, err := applyDelta(ctx, uow, guildID, winnerID, amount, true); err != nil {
		return err
	}
	if _, err := applyDelta(ctx, uow, guildID, loserID, -amount, true); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return storageError("commit transaction", err)
	}

	log.WithFields(log.Fields{
		"winnerID": winnerID,
		"loserID":  loserID,
		"amount":   amount,
	}).Info("Settled wager")

	return nil
}

func (s *economyService) GetBalance(ctx context.Context, memberID int64) (*models.Balance, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	balance, err := uow.BalanceRepository().GetBalance(ctx, memberID)
	if err != nil {
		return nil, storageError("get balance", err)
	}
	return balance, nil
}

func (s *economyService) Rankings(ctx context.Context) ([]*models.Balance, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	balances, err := uow.BalanceRepository().ListRankings(ctx)
	if err != nil {
		return nil, storageError("list rankings", err)
	}
	return balances, nil
}

func (s *economyService) Movements(ctx context.Context, window models.Window, wantGains bool) ([]*models.Transaction, error) {
	since, err := WindowStart(window, s.now(), s.location)
	if err != nil {
		return nil, newValidationError("window", err.Error())
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer uow.Rollback()

	txs, err := uow.TransactionRepository().ListSince(ctx, since)
	if err != nil {
		return nil, storageError(fmt.Sprintf("list transactions since %s", since.Format(time.RFC3339)), err)
	}

	return selectMovements(txs, wantGains), nil
}

// selectMovements filters an ascending-by-delta list to gains or losses and
// keeps at most movementLimit entries. Gains take the head of the list, which
// is the smallest positive deltas; losses take the tail, which is the losses
// closest to zero. Callers rely on this exact selection.
func selectMovements(txs []*models.Transaction, wantGains bool) []*models.Transaction {
	filtered := make([]*models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if (wantGains && tx.IsGain()) || (!wantGains && tx.IsLoss()) {
			filtered = append(filtered, tx)
		}
	}

	n := min(len(filtered), movementLimit)
	if wantGains {
		return filtered[:n]
	}
	return filtered[len(filtered)-n:]
}
