package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxEntry represents a domain event stored in the outbox table.
// A row is inserted only inside the same transaction as the domain change it
// describes; the publisher never deletes rows, it flips PublishedAt from nil
// to non-nil exactly once.
type OutboxEntry struct {
	Seq           int64
	EventID       uuid.UUID
	EventType     string
	TenantID      uuid.UUID
	AggregateID   string
	AggregateType string
	Payload       []byte
	CorrelationID string
	CausationID   string
	OccurredAt    time.Time
	PublishedAt   *time.Time
}

// NewOutboxEntry creates an OutboxEntry from a DomainEvent.
func NewOutboxEntry(event DomainEvent) OutboxEntry {
	entry := OutboxEntry{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		TenantID:      event.TenantID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       event.Payload(),
		OccurredAt:    event.OccurredAt(),
	}
	if c, ok := event.(Correlated); ok {
		entry.CorrelationID = c.CorrelationID()
		entry.CausationID = c.CausationID()
	}
	return entry
}

// Envelope builds the wire envelope for this entry as emitted by producer.
func (e OutboxEntry) Envelope(producer string) Envelope {
	return Envelope{
		EventID:       e.EventID,
		EventType:     e.EventType,
		SchemaVersion: SchemaVersion,
		OccurredAt:    e.OccurredAt,
		Producer:      producer,
		TenantID:      e.TenantID,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		CorrelationID: e.CorrelationID,
		CausationID:   e.CausationID,
		Payload:       e.Payload,
	}
}

// OutboxRepository is the port for outbox persistence. FetchUnpublished
// returns rows ordered by occurred_at ascending with seq as tiebreak, which
// is the only cross-event ordering the substrate promises.
type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, batchSize int) ([]OutboxEntry, error)
	MarkPublished(ctx context.Context, seq int64) error
}
