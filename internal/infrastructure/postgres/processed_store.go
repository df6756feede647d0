package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/pkg/fault"
	"github.com/finbooks/finbooks/pkg/postgres"
)

// ProcessedStore is the per-consumer idempotency ledger. A row's presence
// means the consumer's handler completed for that event; the row is written
// inside the handler's transaction so side effects and the record are
// atomically visible.
type ProcessedStore struct {
	pool *pgxpool.Pool
}

func NewProcessedStore(pool *pgxpool.Pool) *ProcessedStore {
	return &ProcessedStore{pool: pool}
}

// Seen reports whether the consumer already completed this event. Used as the
// cheap pre-check before invoking a handler; the transactional insert remains
// the authority under races.
func (s *ProcessedStore) Seen(ctx context.Context, eventID uuid.UUID, consumer string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM processed_events WHERE event_id = $1 AND consumer_name = $2)
	`, eventID, consumer).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("processed check: %w", err)
	}
	return exists, nil
}

// MarkProcessed records completion on q, the handler's own transaction. A
// unique violation means another delivery won the race and is reported as a
// Duplicate fault so the caller rolls back and absorbs the redelivery.
func (s *ProcessedStore) MarkProcessed(ctx context.Context, q postgres.Querier, eventID uuid.UUID, consumer, eventType string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO processed_events (event_id, consumer_name, event_type)
		VALUES ($1, $2, $3)
	`, eventID, consumer, eventType)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return fault.New(fault.KindDuplicate, fault.CodeDuplicateEvent,
				"event %s already processed by %s", eventID, consumer)
		}
		return fmt.Errorf("insert processed row: %w", err)
	}
	return nil
}
