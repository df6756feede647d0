package testutil

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks/pkg/events"
)

// Fixed UUIDs for deterministic testing
var (
	TestTenantID  = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestActorID   = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestPeriodID  = uuid.MustParse("00000000-0000-0000-0000-000000000030")
	TestAccountID = uuid.MustParse("00000000-0000-0000-0000-000000000020")
)

// NewEnvelope builds a well-formed envelope with a fresh event id, ready to
// marshal onto a bus in tests. The payload must be JSON-marshalable.
func NewEnvelope(eventType string, tenantID uuid.UUID, payload any) events.Envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return events.Envelope{
		EventID:       uuid.New(),
		EventType:     eventType,
		SchemaVersion: events.SchemaVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      "test",
		TenantID:      tenantID,
		Payload:       data,
	}
}
