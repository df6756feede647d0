package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/finbooks/finbooks/pkg/events"
	"github.com/finbooks/finbooks/pkg/postgres"
)

// DLQStore records events whose processing failed unrecoverably. Rows are
// terminal: operators replay them by hand after fixing the cause. Re-insertion
// of the same event id refreshes the error and accumulates the retry count
// across deliveries.
type DLQStore struct {
	db postgres.Querier
}

func NewDLQStore(db postgres.Querier) *DLQStore {
	return &DLQStore{db: db}
}

// Record dead-letters one envelope. retryCount is the retries spent on this
// delivery; a redelivery of an already dead-lettered event adds them to the
// row's running total plus one for the redelivery itself.
func (s *DLQStore) Record(ctx context.Context, env events.Envelope, subject string, procErr error, retryCount int) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal dlq envelope: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO failed_events (event_id, subject, tenant_id, envelope_json, error, retry_count, failed_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (event_id) DO UPDATE SET
			error = EXCLUDED.error,
			retry_count = failed_events.retry_count + EXCLUDED.retry_count + 1,
			failed_at = EXCLUDED.failed_at
	`, env.EventID, subject, env.TenantID, raw, procErr.Error(), retryCount)
	if err != nil {
		return fmt.Errorf("insert dlq row: %w", err)
	}
	return nil
}

// RecordRaw dead-letters bytes that did not decode into an envelope. The
// bytes may not be JSON at all, and jsonb rejects anything that is not, so
// non-JSON input is stored as a quoted string. With no event id to key on,
// each poison delivery gets its own row.
func (s *DLQStore) RecordRaw(ctx context.Context, subject string, data []byte, procErr error) error {
	raw := json.RawMessage(data)
	if !json.Valid(data) {
		quoted, err := json.Marshal(string(data))
		if err != nil {
			return fmt.Errorf("quote dlq payload: %w", err)
		}
		raw = quoted
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO failed_events (event_id, subject, envelope_json, error, retry_count, failed_at)
		VALUES (gen_random_uuid(), $1, $2, $3, 0, now())
	`, subject, raw, procErr.Error())
	if err != nil {
		return fmt.Errorf("insert dlq row: %w", err)
	}
	return nil
}
