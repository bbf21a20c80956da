package service

import (
	"context"
	"sync"
	"time"

	"cactuscoin/models"

	log "github.com/sirupsen/logrus"
)

// WagerHandle is the live view of a pending wager. Inputs from the chat layer
// arrive through Respond and PickWinner; the wager's goroutine owns every
// state transition.
type WagerHandle struct {
	mu        sync.Mutex
	wager     models.Wager
	responded bool
	picked    bool

	responseCh chan bool
	winnerCh   chan int64
	confirmed  chan struct{}
	done       chan struct{}
	outcome    models.WagerOutcome
}

func newWagerHandle(wager models.Wager) *WagerHandle {
	return &WagerHandle{
		wager:      wager,
		responseCh: make(chan bool, 1),
		winnerCh:   make(chan int64, 1),
		confirmed:  make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// ID returns the wager identifier
func (h *WagerHandle) ID() string {
	return h.wager.ID
}

// Snapshot returns a copy of the wager's current data
func (h *WagerHandle) Snapshot() models.Wager {
	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.wager
	if h.wager.WinnerID != nil {
		winner := *h.wager.WinnerID
		w.WinnerID = &winner
	}
	return w
}

// State returns the wager's current state
func (h *WagerHandle) State() models.WagerState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.wager.State
}

// Respond records the counterparty's answer. Input from anyone else, a second
// answer, or an answer after the confirmation window closed is ignored and
// reported as false.
func (h *WagerHandle) Respond(actorID int64, accept bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.wager.State != models.WagerStateAwaitingConfirmation || h.responded {
		return false
	}
	if actorID != h.wager.CounterpartyID {
		return false
	}

	h.responded = true
	h.responseCh <- accept
	return true
}

// PickWinner records the arbiter's choice. Either party may act as arbiter and
// the winner must be one of the two parties.
func (h *WagerHandle) PickWinner(actorID, winnerID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.wager.State != models.WagerStateAwaitingOutcome || h.picked {
		return false
	}
	if !h.wager.IsParticipant(actorID) || !h.wager.IsParticipant(winnerID) {
		return false
	}

	h.picked = true
	h.winnerCh <- winnerID
	return true
}

// AwaitConfirmation blocks until the confirmation phase has resolved and
// reports whether the counterparty accepted.
func (h *WagerHandle) AwaitConfirmation(ctx context.Context) (bool, error) {
	select {
	case <-h.confirmed:
		return true, nil
	case <-h.done:
		select {
		case <-h.confirmed:
			return true, nil
		default:
			return false, nil
		}
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// AwaitOutcome blocks until the wager reaches a terminal state
func (h *WagerHandle) AwaitOutcome(ctx context.Context) (models.WagerOutcome, error) {
	select {
	case <-h.done:
		return h.outcome, nil
	case <-ctx.Done():
		return models.WagerOutcome{}, ctx.Err()
	}
}

// Done is closed once the wager has terminated
func (h *WagerHandle) Done() <-chan struct{} {
	return h.done
}

func (h *WagerHandle) setState(state models.WagerState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wager.State = state
}

// closePhase ends the current phase on timeout. If an input was accepted
// before the lock was taken it is still honoured and returned.
func closePhase[T any](h *WagerHandle, accepted *bool, inputs <-chan T, timedOut models.WagerState) (T, bool) {
	h.mu.Lock()
	if *accepted {
		h.mu.Unlock()
		return <-inputs, true
	}
	h.wager.State = timedOut
	h.mu.Unlock()

	var zero T
	return zero, false
}

// wagerMachine drives one wager through its lifecycle
type wagerMachine struct {
	handle         *WagerHandle
	settler        WagerSettler
	confirmTimeout time.Duration
	outcomeTimeout time.Duration
}

func (m *wagerMachine) run(ctx context.Context) models.WagerOutcome {
	h := m.handle

	accepted, ok := m.awaitResponse(ctx)
	if !ok {
		return m.finish(models.WagerStateConfirmationTimedOut, 0)
	}
	if !accepted {
		return m.finish(models.WagerStateDeclined, 0)
	}

	h.setState(models.WagerStateConfirmed)
	h.setState(models.WagerStateAwaitingOutcome)
	close(h.confirmed)

	winnerID, ok := m.awaitWinner(ctx)
	if !ok {
		return m.finish(models.WagerStateOutcomeTimedOut, 0)
	}

	wager := h.Snapshot()
	loserID := wager.GetOpponent(winnerID)
	if err := m.settler.SettleWager(ctx, wager.GuildID, winnerID, loserID, wager.Amount); err != nil {
		log.WithFields(log.Fields{
			"wagerID":  wager.ID,
			"winnerID": winnerID,
			"error":    err,
		}).Error("Failed to settle wager")
		return m.finish(models.WagerStateOutcomeFailed, 0)
	}

	return m.finish(models.WagerStateSettled, winnerID)
}

func (m *wagerMachine) awaitResponse(ctx context.Context) (bool, bool) {
	h := m.handle
	timer := time.NewTimer(m.confirmTimeout)
	defer timer.Stop()

	select {
	case accept := <-h.responseCh:
		return accept, true
	case <-timer.C:
	case <-ctx.Done():
	}
	return closePhase[bool](h, &h.responded, h.responseCh, models.WagerStateConfirmationTimedOut)
}

func (m *wagerMachine) awaitWinner(ctx context.Context) (int64, bool) {
	h := m.handle
	timer := time.NewTimer(m.outcomeTimeout)
	defer timer.Stop()

	select {
	case winnerID := <-h.winnerCh:
		return winnerID, true
	case <-timer.C:
	case <-ctx.Done():
	}
	return closePhase[int64](h, &h.picked, h.winnerCh, models.WagerStateOutcomeTimedOut)
}

func (m *wagerMachine) finish(state models.WagerState, winnerID int64) models.WagerOutcome {
	h := m.handle

	h.mu.Lock()
	h.wager.State = state
	outcome := models.WagerOutcome{
		State:  state,
		Amount: h.wager.Amount,
	}
	if state == models.WagerStateSettled {
		h.wager.WinnerID = &winnerID
		outcome.Settled = true
		outcome.WinnerID = winnerID
		outcome.LoserID = h.wager.GetOpponent(winnerID)
	}
	h.outcome = outcome
	h.mu.Unlock()

	close(h.done)
	return outcome
}
