package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain/model"
	"github.com/finbooks/finbooks/internal/domain/port"
	"github.com/finbooks/finbooks/pkg/fault"
	"github.com/finbooks/finbooks/pkg/postgres"
)

// Compile-time interface check
var _ port.JournalRepository = (*JournalRepo)(nil)

// JournalRepo implements JournalRepository using PostgreSQL. CreatePosted owns
// the posting transaction: governance, entry, lines, roll-up, the idempotency
// record and the staged outbox rows commit together or not at all.
type JournalRepo struct {
	pool      *pgxpool.Pool
	outbox    *OutboxStore
	processed *ProcessedStore
}

func NewJournalRepo(pool *pgxpool.Pool, outbox *OutboxStore, processed *ProcessedStore) *JournalRepo {
	return &JournalRepo{pool: pool, outbox: outbox, processed: processed}
}

func (r *JournalRepo) CreatePosted(ctx context.Context, entry *model.JournalEntry, consumer string) error {
	err := postgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		period, err := r.lockPeriodForDate(ctx, tx, entry.TenantID, entry)
		if err != nil {
			return err
		}
		if err := r.assertAccountsActive(ctx, tx, entry); err != nil {
			return err
		}
		if err := r.insertEntry(ctx, tx, entry); err != nil {
			return err
		}
		if err := r.insertLines(ctx, tx, entry); err != nil {
			return err
		}
		if err := r.upsertBalances(ctx, tx, entry, period.ID); err != nil {
			return err
		}
		if err := r.processed.MarkProcessed(ctx, tx, entry.SourceEventID, consumer, entry.SourceSubject); err != nil {
			return err
		}
		return r.outbox.AppendDomainEvents(ctx, tx, entry.ClearEvents())
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

// lockPeriodForDate resolves the period containing the entry's posting date
// and takes a shared row lock, so a concurrent close (FOR UPDATE) and this
// posting serialize instead of interleaving.
func (r *JournalRepo) lockPeriodForDate(ctx context.Context, q postgres.Querier, tenantID uuid.UUID, entry *model.JournalEntry) (model.AccountingPeriod, error) {
	var period model.AccountingPeriod
	err := q.QueryRow(ctx, `
		SELECT id, tenant_id, period_start, period_end, closed_at
		FROM accounting_periods
		WHERE tenant_id = $1 AND period_start <= $2 AND period_end >= $2
		FOR SHARE
	`, tenantID, entry.PostingDate).Scan(&period.ID, &period.TenantID, &period.PeriodStart, &period.PeriodEnd, &period.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AccountingPeriod{}, fault.New(fault.KindGovernance, fault.CodeNoPeriodForDate,
			"no accounting period covers %s", entry.PostingDate.Format("2006-01-02"))
	}
	if err != nil {
		return model.AccountingPeriod{}, fmt.Errorf("lock period: %w", err)
	}
	if period.IsClosed() {
		return model.AccountingPeriod{}, fault.New(fault.KindGovernance, fault.CodePeriodClosed,
			"period %s is closed", period.ID)
	}
	return period, nil
}

func (r *JournalRepo) assertAccountsActive(ctx context.Context, q postgres.Querier, entry *model.JournalEntry) error {
	for _, code := range entry.AccountRefs() {
		var isActive bool
		err := q.QueryRow(ctx, `
			SELECT is_active FROM accounts WHERE tenant_id = $1 AND code = $2
		`, entry.TenantID, code).Scan(&isActive)
		if errors.Is(err, pgx.ErrNoRows) {
			return fault.New(fault.KindGovernance, fault.CodeAccountNotFound, "account %s not found", code)
		}
		if err != nil {
			return fmt.Errorf("account lookup %s: %w", code, err)
		}
		if !isActive {
			return fault.New(fault.KindGovernance, fault.CodeAccountInactive, "account %s is inactive", code)
		}
	}
	return nil
}

func (r *JournalRepo) insertEntry(ctx context.Context, q postgres.Querier, entry *model.JournalEntry) error {
	_, err := q.Exec(ctx, `
		INSERT INTO journal_entries (id, tenant_id, source_module, source_event_id, source_subject, posted_at, posting_date, currency, description, reference_type, reference_id, reverses_entry_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, entry.ID, entry.TenantID, entry.SourceModule, entry.SourceEventID, entry.SourceSubject,
		entry.PostedAt, entry.PostingDate, entry.Currency, entry.Description,
		entry.ReferenceType, entry.ReferenceID, entry.ReversesEntryID)
	if err != nil {
		if postgres.IsUniqueViolation(err, "journal_entries_source_event_id_key") {
			return fault.New(fault.KindDuplicate, fault.CodeDuplicateEvent,
				"entry for source event %s already exists", entry.SourceEventID)
		}
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func (r *JournalRepo) insertLines(ctx context.Context, q postgres.Querier, entry *model.JournalEntry) error {
	for _, line := range entry.Lines {
		_, err := q.Exec(ctx, `
			INSERT INTO journal_lines (id, journal_entry_id, line_no, account_ref, debit_minor, credit_minor, memo)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, line.ID, line.JournalEntryID, line.LineNo, line.AccountRef, line.DebitMinor, line.CreditMinor, line.Memo)
		if err != nil {
			return fmt.Errorf("insert line %d: %w", line.LineNo, err)
		}
	}
	return nil
}

// upsertBalances applies the entry's per-account deltas as single-statement
// upserts, so concurrent postings to the same key never read-modify-write.
func (r *JournalRepo) upsertBalances(ctx context.Context, q postgres.Querier, entry *model.JournalEntry, periodID uuid.UUID) error {
	for _, delta := range entry.BalanceDeltas() {
		_, err := q.Exec(ctx, `
			INSERT INTO account_balances (tenant_id, period_id, account_code, currency, debit_total_minor, credit_total_minor, net_balance_minor, last_journal_entry_id, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $5 - $6, $7, now())
			ON CONFLICT (tenant_id, period_id, account_code, currency) DO UPDATE SET
				debit_total_minor = account_balances.debit_total_minor + EXCLUDED.debit_total_minor,
				credit_total_minor = account_balances.credit_total_minor + EXCLUDED.credit_total_minor,
				net_balance_minor = account_balances.net_balance_minor + EXCLUDED.net_balance_minor,
				last_journal_entry_id = EXCLUDED.last_journal_entry_id,
				updated_at = now()
		`, entry.TenantID, periodID, delta.AccountRef, entry.Currency,
			delta.DebitMinor, delta.CreditMinor, entry.ID)
		if err != nil {
			return fmt.Errorf("upsert balance %s: %w", delta.AccountRef, err)
		}
	}
	return nil
}

func (r *JournalRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.JournalEntry, error) {
	var entry model.JournalEntry
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, source_module, source_event_id, source_subject, posted_at, posting_date, currency, description, reference_type, reference_id, reverses_entry_id
		FROM journal_entries
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&entry.ID, &entry.TenantID, &entry.SourceModule, &entry.SourceEventID,
		&entry.SourceSubject, &entry.PostedAt, &entry.PostingDate, &entry.Currency,
		&entry.Description, &entry.ReferenceType, &entry.ReferenceID, &entry.ReversesEntryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.New(fault.KindNotFound, fault.CodeEntryNotFound, "entry %s not found", id)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("query journal entry: %w", err))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, journal_entry_id, line_no, account_ref, debit_minor, credit_minor, memo
		FROM journal_lines
		WHERE journal_entry_id = $1
		ORDER BY line_no
	`, id)
	if err != nil {
		return nil, classify(fmt.Errorf("query journal lines: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var line model.JournalLine
		if err := rows.Scan(&line.ID, &line.JournalEntryID, &line.LineNo, &line.AccountRef,
			&line.DebitMinor, &line.CreditMinor, &line.Memo); err != nil {
			return nil, fmt.Errorf("scan journal line: %w", err)
		}
		entry.Lines = append(entry.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return &entry, nil
}

// classify maps unclassified storage errors to Transient, which the consumer
// runner retries. Already-classified faults pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var fe *fault.Error
	if errors.As(err, &fe) {
		return err
	}
	return fault.Wrap(fault.KindTransient, fault.CodeTransient, err)
}
