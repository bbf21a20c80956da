package events

import (
	"context"
	"sync"

	"cactuscoin/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeBalanceVerified EventType = "balance_verified"
	EventTypeBalanceCleared  EventType = "balance_cleared"
	EventTypeWagerResolved   EventType = "wager_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that was committed
type BalanceChangeEvent struct {
	GuildID    int64
	MemberID   int64
	OldBalance int64
	NewBalance int64
	Delta      int64
	Persisted  bool
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BalanceVerifiedEvent is emitted whenever a member's balance is verified,
// including when it already existed, so cosmetics can be re-synced.
type BalanceVerifiedEvent struct {
	GuildID  int64
	MemberID int64
	Balance  int64
	Created  bool
}

func (e BalanceVerifiedEvent) Type() EventType {
	return EventTypeBalanceVerified
}

// BalanceClearedEvent represents the removal of a member's balance and history
type BalanceClearedEvent struct {
	GuildID  int64
	MemberID int64
}

func (e BalanceClearedEvent) Type() EventType {
	return EventTypeBalanceCleared
}

// WagerResolvedEvent represents a wager that reached a terminal state
type WagerResolvedEvent struct {
	WagerID  string
	GuildID  int64
	State    models.WagerState
	WinnerID int64
	LoserID  int64
	Amount   int64
}

func (e WagerResolvedEvent) Type() EventType {
	return EventTypeWagerResolved
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run on their
// own goroutines and a panicking handler does not affect the others.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until the
// surrounding transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event until commit")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	if b.real == nil {
		b.pending = nil
		return nil
	}

	// handlers outlive the transaction context
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
