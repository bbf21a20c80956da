package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cactuscoin/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const sourceService = "cactuscoin"

// MessagePublisher sends raw bytes to a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventEnvelope wraps a forwarded event
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// EventForwarder republishes committed bus events to NATS. Forwarding is
// best-effort and never affects the ledger.
type EventForwarder struct {
	publisher MessagePublisher
	now       func() time.Time
}

// NewEventForwarder creates a forwarder publishing through publisher
func NewEventForwarder(publisher MessagePublisher) *EventForwarder {
	return &EventForwarder{
		publisher: publisher,
		now:       time.Now,
	}
}

// Subscribe registers the forwarder for every forwarded event type
func (f *EventForwarder) Subscribe(bus *events.Bus) {
	for _, eventType := range ForwardedEventTypes() {
		bus.Subscribe(eventType, f.handle)
	}
}

func (f *EventForwarder) handle(ctx context.Context, event events.Event) {
	if err := f.Forward(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event")
	}
}

// Forward publishes a single event
func (f *EventForwarder) Forward(ctx context.Context, event events.Event) error {
	envelope, err := f.buildEnvelope(event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := MapEventTypeToSubject(event.Type())
	if err := f.publisher.Publish(ctx, subject, data); err != nil {
		// no stream bound to the subject
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Forwarded event to NATS")

	return nil
}

func (f *EventForwarder) buildEnvelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     f.now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}, nil
}
