package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the envelope schema version stamped on every published event.
const SchemaVersion = 1

// Envelope is the canonical metadata record wrapping every event payload on
// the wire and in the outbox. It is self-describing: a consumer needs nothing
// but the envelope to route, deduplicate, and trace an event.
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	SchemaVersion int             `json:"schema_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	TraceID       string          `json:"trace_id,omitempty"`
	CausationID   string          `json:"causation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// Validate checks the fields a consumer cannot proceed without.
func (e Envelope) Validate() error {
	switch {
	case e.EventID == uuid.Nil:
		return fmt.Errorf("envelope: missing event_id")
	case e.EventType == "":
		return fmt.Errorf("envelope: missing event_type")
	case e.TenantID == uuid.Nil:
		return fmt.Errorf("envelope: missing tenant_id")
	case e.OccurredAt.IsZero():
		return fmt.Errorf("envelope: missing occurred_at")
	}
	return nil
}

// DecodeEnvelope parses an envelope from its JSON wire form and validates the
// required fields. Unknown fields are ignored.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("envelope: decode: %w", err)
	}
	if err := env.Validate(); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// SubjectFor derives the bus subject for an event type. For event type
// "<domain>.<rest>" the subject is "<domain>.events.<rest>", keyed by the
// event type's own prefix rather than the producing service: an AR producer
// emitting "gl.posting.requested" publishes to "gl.events.posting.requested"
// so GL consumers subscribe in one place.
func SubjectFor(eventType string) (string, error) {
	domain, rest, ok := strings.Cut(eventType, ".")
	if !ok || domain == "" || rest == "" {
		return "", fmt.Errorf("event type %q: want <domain>.<rest>", eventType)
	}
	return domain + ".events." + rest, nil
}
