package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"cactuscoin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalBus_FlushDeliversToBus(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventReceived <- balanceEvent
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		GuildID:    789,
		MemberID:   123456,
		OldBalance: 1000,
		NewBalance: 1500,
		Delta:      500,
		Persisted:  true,
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	err := transactionalBus.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestTransactionalBus_MultipleEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan BalanceChangeEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			received <- balanceEvent
		}
	})

	for _, id := range []int64{1, 2, 3} {
		transactionalBus.Publish(BalanceChangeEvent{MemberID: id, Delta: id * 100})
	}
	require.NoError(t, transactionalBus.Flush(context.Background()))

	wg.Wait()
	close(received)

	memberIDs := make(map[int64]bool)
	for event := range received {
		memberIDs[event.MemberID] = true
	}
	assert.Len(t, memberIDs, 3)
	assert.True(t, memberIDs[1])
	assert.True(t, memberIDs[2])
	assert.True(t, memberIDs[3])
}

func TestTransactionalBus_Discard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(BalanceChangeEvent{MemberID: 123456, Delta: 500})
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_PanickingHandlerDoesNotAffectOthers(t *testing.T) {
	bus := NewBus()

	delivered := make(chan WagerResolvedEvent, 1)
	bus.Subscribe(EventTypeWagerResolved, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeWagerResolved, func(ctx context.Context, event Event) {
		delivered <- event.(WagerResolvedEvent)
	})

	bus.Emit(context.Background(), WagerResolvedEvent{WagerID: "w-1", State: models.WagerStateSettled})

	select {
	case event := <-delivered:
		assert.Equal(t, "w-1", event.WagerID)
	case <-time.After(2 * time.Second):
		t.Fatal("Second handler was not invoked")
	}
}

func TestBus_OnlyMatchingTypeIsDelivered(t *testing.T) {
	bus := NewBus()

	called := make(chan EventType, 2)
	bus.Subscribe(EventTypeBalanceCleared, func(ctx context.Context, event Event) {
		called <- event.Type()
	})

	bus.Emit(context.Background(), BalanceVerifiedEvent{MemberID: 1})
	bus.Emit(context.Background(), BalanceClearedEvent{MemberID: 1})

	select {
	case eventType := <-called:
		assert.Equal(t, EventTypeBalanceCleared, eventType)
	case <-time.After(2 * time.Second):
		t.Fatal("Cleared event was not delivered")
	}

	select {
	case eventType := <-called:
		t.Fatalf("Unexpected delivery of %s", eventType)
	case <-time.After(100 * time.Millisecond):
	}
}
