package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSubjectFor(t *testing.T) {
	cases := []struct {
		eventType string
		subject   string
		wantErr   bool
	}{
		{"gl.posting.requested", "gl.events.posting.requested", false},
		{"gl.entry.reverse.requested", "gl.events.entry.reverse.requested", false},
		{"gl.entry.reversed", "gl.events.entry.reversed", false},
		{"payments.payment.succeeded", "payments.events.payment.succeeded", false},
		{"ar.payment.collection.requested", "ar.events.payment.collection.requested", false},
		{"noprefix", "", true},
		{"gl.", "", true},
		{".requested", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := SubjectFor(tc.eventType)
		if tc.wantErr {
			if err == nil {
				t.Errorf("SubjectFor(%q): expected error, got %q", tc.eventType, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("SubjectFor(%q): unexpected error %v", tc.eventType, err)
			continue
		}
		if got != tc.subject {
			t.Errorf("SubjectFor(%q) = %q, want %q", tc.eventType, got, tc.subject)
		}
	}
}

func TestDecodeEnvelope(t *testing.T) {
	env := Envelope{
		EventID:       uuid.New(),
		EventType:     "gl.posting.requested",
		SchemaVersion: SchemaVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      "ar-service/1.0",
		TenantID:      uuid.New(),
		AggregateType: "Invoice",
		AggregateID:   "INV-100",
		CorrelationID: "corr-1",
		Payload:       json.RawMessage(`{"k":"v"}`),
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.EventID != env.EventID {
		t.Errorf("event_id = %s, want %s", decoded.EventID, env.EventID)
	}
	if decoded.EventType != env.EventType {
		t.Errorf("event_type = %q, want %q", decoded.EventType, env.EventType)
	}
	if decoded.CorrelationID != "corr-1" {
		t.Errorf("correlation_id = %q, want corr-1", decoded.CorrelationID)
	}
}

func TestDecodeEnvelopeIgnoresUnknownFields(t *testing.T) {
	raw := []byte(`{
		"event_id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"event_type": "gl.posting.requested",
		"schema_version": 1,
		"occurred_at": "2024-02-15T10:00:00Z",
		"producer": "ar-service/1.0",
		"tenant_id": "6ba7b811-9dad-11d1-80b4-00c04fd430c8",
		"aggregate_type": "Invoice",
		"aggregate_id": "INV-1",
		"payload": {},
		"some_future_field": "ignored"
	}`)
	if _, err := DecodeEnvelope(raw); err != nil {
		t.Fatalf("decode with unknown field: %v", err)
	}
}

func TestDecodeEnvelopeMissingRequiredFields(t *testing.T) {
	cases := map[string][]byte{
		"missing event_id":   []byte(`{"event_type":"gl.x","tenant_id":"6ba7b811-9dad-11d1-80b4-00c04fd430c8","occurred_at":"2024-02-15T10:00:00Z"}`),
		"missing event_type": []byte(`{"event_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","tenant_id":"6ba7b811-9dad-11d1-80b4-00c04fd430c8","occurred_at":"2024-02-15T10:00:00Z"}`),
		"missing tenant_id":  []byte(`{"event_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","event_type":"gl.x","occurred_at":"2024-02-15T10:00:00Z"}`),
		"not json":           []byte(`{`),
	}
	for name, raw := range cases {
		if _, err := DecodeEnvelope(raw); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestNewOutboxEntryCarriesCorrelation(t *testing.T) {
	tenant := uuid.New()
	base := NewBaseEvent("gl.entry.reversed", tenant, "agg-1", "JournalEntry", []byte(`{}`)).
		WithCausation("corr-9", "cause-9")

	entry := NewOutboxEntry(base)
	if entry.CorrelationID != "corr-9" || entry.CausationID != "cause-9" {
		t.Errorf("correlation = (%q,%q), want (corr-9,cause-9)", entry.CorrelationID, entry.CausationID)
	}
	if entry.PublishedAt != nil {
		t.Error("new outbox entry must be unpublished")
	}

	env := entry.Envelope("gl-service/1.0")
	if env.Producer != "gl-service/1.0" {
		t.Errorf("producer = %q", env.Producer)
	}
	if env.SchemaVersion != SchemaVersion {
		t.Errorf("schema_version = %d", env.SchemaVersion)
	}
	if env.TenantID != tenant {
		t.Errorf("tenant_id = %s, want %s", env.TenantID, tenant)
	}
}
