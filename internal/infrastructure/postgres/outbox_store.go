package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/pkg/events"
	"github.com/finbooks/finbooks/pkg/postgres"
)

// Compile-time interface check
var _ events.OutboxRepository = (*OutboxStore)(nil)

// OutboxStore persists the transactional outbox. Append runs on the caller's
// transaction; the drain side reads through the pool.
type OutboxStore struct {
	pool *pgxpool.Pool
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{pool: pool}
}

// Append inserts one outbox row on q, which is the transaction of the domain
// change the event describes.
func (s *OutboxStore) Append(ctx context.Context, q postgres.Querier, entry events.OutboxEntry) error {
	_, err := q.Exec(ctx, `
		INSERT INTO events_outbox (event_id, event_type, tenant_id, aggregate_id, aggregate_type, payload, correlation_id, causation_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.EventID, entry.EventType, entry.TenantID, entry.AggregateID, entry.AggregateType,
		entry.Payload, entry.CorrelationID, entry.CausationID, entry.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}
	return nil
}

// AppendDomainEvents stages a batch of domain events on q.
func (s *OutboxStore) AppendDomainEvents(ctx context.Context, q postgres.Querier, evts []events.DomainEvent) error {
	for _, evt := range evts {
		if err := s.Append(ctx, q, events.NewOutboxEntry(evt)); err != nil {
			return err
		}
	}
	return nil
}

// FetchUnpublished returns up to batchSize undelivered rows in occurred_at
// order with seq as tiebreak.
func (s *OutboxStore) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, event_id, event_type, tenant_id, aggregate_id, aggregate_type, payload, correlation_id, causation_id, occurred_at
		FROM events_outbox
		WHERE published_at IS NULL
		ORDER BY occurred_at, seq
		LIMIT $1
	`, batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(&e.Seq, &e.EventID, &e.EventType, &e.TenantID, &e.AggregateID,
			&e.AggregateType, &e.Payload, &e.CorrelationID, &e.CausationID, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkPublished flips published_at exactly once.
func (s *OutboxStore) MarkPublished(ctx context.Context, seq int64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE events_outbox SET published_at = now() WHERE seq = $1 AND published_at IS NULL
	`, seq)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}
