package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	TenantID() uuid.UUID
	AggregateID() string
	AggregateType() string
	OccurredAt() time.Time
	Payload() []byte
}

// Correlated is implemented by events that carry tracing identifiers.
// The outbox keeps them so the publisher can stamp the wire envelope.
type Correlated interface {
	CorrelationID() string
	CausationID() string
}

// BaseEvent provides a default implementation of DomainEvent.
type BaseEvent struct {
	id            uuid.UUID
	eventType     string
	tenantID      uuid.UUID
	aggregateID   string
	aggregateType string
	occurredAt    time.Time
	payload       []byte
	correlationID string
	causationID   string
}

// NewBaseEvent creates a new BaseEvent with a generated UUID and the current time.
func NewBaseEvent(eventType string, tenantID uuid.UUID, aggregateID, aggregateType string, payload []byte) BaseEvent {
	return BaseEvent{
		id:            uuid.New(),
		eventType:     eventType,
		tenantID:      tenantID,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    time.Now().UTC(),
		payload:       payload,
	}
}

// WithCausation returns a copy of the event linked to the event that caused it.
func (e BaseEvent) WithCausation(correlationID, causationID string) BaseEvent {
	e.correlationID = correlationID
	e.causationID = causationID
	return e
}

// EventID returns the unique identifier for this event.
func (e BaseEvent) EventID() uuid.UUID {
	return e.id
}

// EventType returns the dotted type name of this event.
func (e BaseEvent) EventType() string {
	return e.eventType
}

// TenantID returns the tenant the event belongs to.
func (e BaseEvent) TenantID() uuid.UUID {
	return e.tenantID
}

// AggregateID returns the identifier of the aggregate that produced this event.
func (e BaseEvent) AggregateID() string {
	return e.aggregateID
}

// AggregateType returns the type name of the aggregate that produced this event.
func (e BaseEvent) AggregateType() string {
	return e.aggregateType
}

// OccurredAt returns the time at which this event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// Payload returns the serialized event payload.
func (e BaseEvent) Payload() []byte {
	return e.payload
}

// CorrelationID groups related events in one business transaction.
func (e BaseEvent) CorrelationID() string {
	return e.correlationID
}

// CausationID identifies the event that caused this one, if any.
func (e BaseEvent) CausationID() string {
	return e.causationID
}
