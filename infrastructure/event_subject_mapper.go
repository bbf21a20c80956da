package infrastructure

import (
	"fmt"

	"cactuscoin/events"
)

// Subjects forwarded ledger events are published on
const (
	SubjectBalanceChanged  = "ledger.balance_changed"
	SubjectBalanceVerified = "ledger.balance_verified"
	SubjectBalanceCleared  = "ledger.balance_cleared"
	SubjectWagerResolved   = "wagers.resolved"
)

// MapEventTypeToSubject converts an event type to its NATS subject
func MapEventTypeToSubject(eventType events.EventType) string {
	switch eventType {
	case events.EventTypeBalanceChange:
		return SubjectBalanceChanged
	case events.EventTypeBalanceVerified:
		return SubjectBalanceVerified
	case events.EventTypeBalanceCleared:
		return SubjectBalanceCleared
	case events.EventTypeWagerResolved:
		return SubjectWagerResolved
	default:
		return fmt.Sprintf("unknown.%s", eventType)
	}
}

// ForwardedEventTypes lists the event types the forwarder subscribes to
func ForwardedEventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeBalanceVerified,
		events.EventTypeBalanceCleared,
		events.EventTypeWagerResolved,
	}
}

// AllSubjects returns every subject this service publishes to
func AllSubjects() []string {
	types := ForwardedEventTypes()
	subjects := make([]string, 0, len(types))
	for _, eventType := range types {
		subjects = append(subjects, MapEventTypeToSubject(eventType))
	}
	return subjects
}
