package models

import (
	"time"
)

// WagerState represents the lifecycle position of a wager
type WagerState string

const (
	WagerStateProposed             WagerState = "proposed"
	WagerStateAwaitingConfirmation WagerState = "awaiting_confirmation"
	WagerStateDeclined             WagerState = "declined"
	WagerStateConfirmationTimedOut WagerState = "confirmation_timed_out"
	WagerStateConfirmed            WagerState = "confirmed"
	WagerStateAwaitingOutcome      WagerState = "awaiting_outcome"
	WagerStateOutcomeTimedOut      WagerState = "outcome_timed_out"
	WagerStateOutcomeFailed        WagerState = "outcome_failed"
	WagerStateSettled              WagerState = "settled"
)

// IsTerminal reports whether no further transitions are possible
func (s WagerState) IsTerminal() bool {
	switch s {
	case WagerStateDeclined, WagerStateConfirmationTimedOut,
		WagerStateOutcomeTimedOut, WagerStateOutcomeFailed, WagerStateSettled:
		return true
	}
	return false
}

// Wager is a pending two-party bet. Wagers live only in memory and are
// discarded once they reach a terminal state.
type Wager struct {
	ID             string
	GuildID        int64
	ProposerID     int64
	CounterpartyID int64
	Amount         int64
	Reason         string
	State          WagerState
	WinnerID       *int64
	CreatedAt      time.Time
}

// IsParticipant checks if a member is one of the two parties
func (w *Wager) IsParticipant(memberID int64) bool {
	return w.ProposerID == memberID || w.CounterpartyID == memberID
}

// GetOpponent returns the other party for a participant, or 0 for outsiders
func (w *Wager) GetOpponent(memberID int64) int64 {
	if w.ProposerID == memberID {
		return w.CounterpartyID
	}
	if w.CounterpartyID == memberID {
		return w.ProposerID
	}
	return 0
}

// WagerOutcome reports how a wager ended
type WagerOutcome struct {
	State    WagerState
	Settled  bool
	WinnerID int64
	LoserID  int64
	Amount   int64
}
