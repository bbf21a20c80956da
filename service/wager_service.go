package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"cactuscoin/events"
	"cactuscoin/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultOutcomeTimeout = 24 * time.Hour
)

// WagerConfig bounds how long each wager phase waits for input
type WagerConfig struct {
	ConfirmTimeout time.Duration
	OutcomeTimeout time.Duration
}

type wagerService struct {
	settler  WagerSettler
	eventBus *events.Bus
	config   WagerConfig

	mu     sync.Mutex
	wagers map[string]*WagerHandle
}

// NewWagerService creates a new wager service. eventBus may be nil.
func NewWagerService(settler WagerSettler, eventBus *events.Bus, config WagerConfig) WagerService {
	if config.ConfirmTimeout <= 0 {
		config.ConfirmTimeout = DefaultConfirmTimeout
	}
	if config.OutcomeTimeout <= 0 {
		config.OutcomeTimeout = DefaultOutcomeTimeout
	}
	return &wagerService{
		settler:  settler,
		eventBus: eventBus,
		config:   config,
		wagers:   make(map[string]*WagerHandle),
	}
}

// ProposeWager starts a wager whose lifetime is bounded by ctx. The returned
// handle is immediately awaiting the counterparty's confirmation.
func (s *wagerService) ProposeWager(ctx context.Context, guildID, proposerID, counterpartyID int64, amount int64, reason string) (*WagerHandle, error) {
	if proposerID == counterpartyID {
		return nil, newValidationError("counterparty", "cannot wager against yourself")
	}
	if amount <= 0 {
		return nil, newValidationError("amount", "wager amount must be positive")
	}
	if err := checkAmount("amount", amount); err != nil {
		return nil, err
	}

	wager := models.Wager{
		ID:             uuid.NewString(),
		GuildID:        guildID,
		ProposerID:     proposerID,
		CounterpartyID: counterpartyID,
		Amount:         amount,
		Reason:         strings.TrimSpace(reason),
		State:          models.WagerStateProposed,
		CreatedAt:      time.Now().UTC(),
	}
	handle := newWagerHandle(wager)
	handle.setState(models.WagerStateAwaitingConfirmation)

	s.mu.Lock()
	s.wagers[wager.ID] = handle
	s.mu.Unlock()

	machine := &wagerMachine{
		handle:         handle,
		settler:        s.settler,
		confirmTimeout: s.config.ConfirmTimeout,
		outcomeTimeout: s.config.OutcomeTimeout,
	}

	log.WithFields(log.Fields{
		"wagerID":        wager.ID,
		"proposerID":     proposerID,
		"counterpartyID": counterpartyID,
		"amount":         amount,
	}).Info("Wager proposed")

	go func() {
		outcome := machine.run(ctx)
		s.remove(wager.ID)

		log.WithFields(log.Fields{
			"wagerID":  wager.ID,
			"state":    outcome.State,
			"winnerID": outcome.WinnerID,
		}).Info("Wager finished")

		if s.eventBus != nil {
			s.eventBus.Emit(context.WithoutCancel(ctx), events.WagerResolvedEvent{
				WagerID:  wager.ID,
				GuildID:  guildID,
				State:    outcome.State,
				WinnerID: outcome.WinnerID,
				LoserID:  outcome.LoserID,
				Amount:   outcome.Amount,
			})
		}
	}()

	return handle, nil
}

func (s *wagerService) GetWager(id string) *WagerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wagers[id]
}

func (s *wagerService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wagers)
}

func (s *wagerService) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wagers, id)
}
