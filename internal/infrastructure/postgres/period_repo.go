package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain/event"
	"github.com/finbooks/finbooks/internal/domain/model"
	"github.com/finbooks/finbooks/internal/domain/port"
	"github.com/finbooks/finbooks/internal/domain/service"
	"github.com/finbooks/finbooks/pkg/events"
	"github.com/finbooks/finbooks/pkg/fault"
	"github.com/finbooks/finbooks/pkg/postgres"
)

// Compile-time interface check
var _ port.PeriodRepository = (*PeriodRepo)(nil)

// Issue codes reported by close validation.
const (
	issueAlreadyClosed     = "PERIOD_ALREADY_CLOSED"
	issueUnbalancedEntry   = "UNBALANCED_ENTRY"
	issueInactiveAccount   = "INACTIVE_ACCOUNT"
	issueUnprocessedEvents = "UNPROCESSED_EVENTS"
)

// PeriodRepo implements PeriodRepository using PostgreSQL. Close runs as one
// serializable transaction holding the period row FOR UPDATE, which excludes
// concurrent postings (they take FOR SHARE on the same row) for the duration
// of the seal.
type PeriodRepo struct {
	pool   *pgxpool.Pool
	outbox *OutboxStore
}

func NewPeriodRepo(pool *pgxpool.Pool, outbox *OutboxStore) *PeriodRepo {
	return &PeriodRepo{pool: pool, outbox: outbox}
}

func (r *PeriodRepo) FindByID(ctx context.Context, tenantID, periodID uuid.UUID) (model.AccountingPeriod, error) {
	return r.fetchPeriod(ctx, r.pool, tenantID, periodID, "")
}

func (r *PeriodRepo) fetchPeriod(ctx context.Context, q postgres.Querier, tenantID, periodID uuid.UUID, lock string) (model.AccountingPeriod, error) {
	var p model.AccountingPeriod
	query := `
		SELECT id, tenant_id, period_start, period_end, close_requested_at, closed_at, coalesce(closed_by, ''), coalesce(close_reason, ''), coalesce(close_hash, '')
		FROM accounting_periods
		WHERE tenant_id = $1 AND id = $2` + lock
	err := q.QueryRow(ctx, query, tenantID, periodID).Scan(
		&p.ID, &p.TenantID, &p.PeriodStart, &p.PeriodEnd,
		&p.CloseRequestedAt, &p.ClosedAt, &p.ClosedBy, &p.CloseReason, &p.CloseHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AccountingPeriod{}, fault.New(fault.KindNotFound, fault.CodeNoPeriodForDate,
			"period %s not found", periodID)
	}
	if err != nil {
		return model.AccountingPeriod{}, classify(fmt.Errorf("query period: %w", err))
	}
	return p, nil
}

func (r *PeriodRepo) ValidateClose(ctx context.Context, tenantID, periodID uuid.UUID) (model.CloseValidationReport, error) {
	period, err := r.fetchPeriod(ctx, r.pool, tenantID, periodID, "")
	if err != nil {
		return model.CloseValidationReport{}, err
	}
	return r.validateOn(ctx, r.pool, period)
}

// validateOn runs the pre-close checks on q, which is the pool for the
// standalone report and the close transaction for the in-tx re-run.
func (r *PeriodRepo) validateOn(ctx context.Context, q postgres.Querier, period model.AccountingPeriod) (model.CloseValidationReport, error) {
	report := model.CloseValidationReport{PeriodID: period.ID}

	if period.IsClosed() {
		report.Issues = append(report.Issues, model.CloseValidationIssue{
			Severity: model.SeverityError,
			Code:     issueAlreadyClosed,
			Message:  fmt.Sprintf("period closed at %s", period.ClosedAt.Format("2006-01-02T15:04:05Z07:00")),
		})
		return report, nil
	}

	if err := r.checkEntriesBalanced(ctx, q, period, &report); err != nil {
		return model.CloseValidationReport{}, err
	}
	if err := r.checkAccountsActive(ctx, q, period, &report); err != nil {
		return model.CloseValidationReport{}, err
	}
	if err := r.checkNoPendingDLQ(ctx, q, period, &report); err != nil {
		return model.CloseValidationReport{}, err
	}
	return report, nil
}

func (r *PeriodRepo) checkEntriesBalanced(ctx context.Context, q postgres.Querier, period model.AccountingPeriod, report *model.CloseValidationReport) error {
	rows, err := q.Query(ctx, `
		SELECT je.id, sum(jl.debit_minor), sum(jl.credit_minor)
		FROM journal_entries je
		JOIN journal_lines jl ON jl.journal_entry_id = je.id
		WHERE je.tenant_id = $1 AND je.posting_date BETWEEN $2 AND $3
		GROUP BY je.id
		HAVING sum(jl.debit_minor) <> sum(jl.credit_minor)
	`, period.TenantID, period.PeriodStart, period.PeriodEnd)
	if err != nil {
		return classify(fmt.Errorf("balance check: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var entryID uuid.UUID
		var debits, credits int64
		if err := rows.Scan(&entryID, &debits, &credits); err != nil {
			return fmt.Errorf("scan balance check: %w", err)
		}
		report.Issues = append(report.Issues, model.CloseValidationIssue{
			Severity: model.SeverityError,
			Code:     issueUnbalancedEntry,
			Message:  fmt.Sprintf("entry %s not balanced: debits %d, credits %d", entryID, debits, credits),
		})
	}
	return rows.Err()
}

// checkAccountsActive flags accounts deactivated after postings referenced
// them. The entries were valid when booked, so this is a warning, not a
// blocker.
func (r *PeriodRepo) checkAccountsActive(ctx context.Context, q postgres.Querier, period model.AccountingPeriod, report *model.CloseValidationReport) error {
	rows, err := q.Query(ctx, `
		SELECT DISTINCT jl.account_ref
		FROM journal_entries je
		JOIN journal_lines jl ON jl.journal_entry_id = je.id
		JOIN accounts a ON a.tenant_id = je.tenant_id AND a.code = jl.account_ref
		WHERE je.tenant_id = $1 AND je.posting_date BETWEEN $2 AND $3 AND NOT a.is_active
		ORDER BY jl.account_ref
	`, period.TenantID, period.PeriodStart, period.PeriodEnd)
	if err != nil {
		return classify(fmt.Errorf("account check: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return fmt.Errorf("scan account check: %w", err)
		}
		report.Issues = append(report.Issues, model.CloseValidationIssue{
			Severity: model.SeverityWarning,
			Code:     issueInactiveAccount,
			Message:  fmt.Sprintf("account %s referenced in period is now inactive", code),
		})
	}
	return rows.Err()
}

// checkNoPendingDLQ blocks the close while posting requests for the period
// sit in the DLQ. The posting_date comes out of a failed payload, so it is
// untrusted text: it is compared in Go, and a value that does not parse
// counts as pending because it cannot be placed outside the period.
func (r *PeriodRepo) checkNoPendingDLQ(ctx context.Context, q postgres.Querier, period model.AccountingPeriod, report *model.CloseValidationReport) error {
	rows, err := q.Query(ctx, `
		SELECT coalesce(envelope_json->'payload'->>'posting_date', '')
		FROM failed_events
		WHERE tenant_id = $1
		  AND envelope_json->>'event_type' = 'gl.posting.requested'
	`, period.TenantID)
	if err != nil {
		return classify(fmt.Errorf("dlq check: %w", err))
	}
	defer rows.Close()

	var pending int
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("scan dlq check: %w", err)
		}
		date, perr := time.Parse("2006-01-02", raw)
		if perr != nil || (!date.Before(period.PeriodStart) && !date.After(period.PeriodEnd)) {
			pending++
		}
	}
	if err := rows.Err(); err != nil {
		return classify(err)
	}
	if pending > 0 {
		report.Issues = append(report.Issues, model.CloseValidationIssue{
			Severity: model.SeverityError,
			Code:     issueUnprocessedEvents,
			Message:  fmt.Sprintf("%d posting requests for this period remain in the DLQ", pending),
		})
	}
	return nil
}

func (r *PeriodRepo) Close(ctx context.Context, cmd model.CloseCommand) (model.CloseStatus, bool, error) {
	var status model.CloseStatus
	var alreadyClosed bool

	err := postgres.WithSerializableTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		period, err := r.fetchPeriod(ctx, tx, cmd.TenantID, cmd.PeriodID, " FOR UPDATE")
		if err != nil {
			return err
		}

		if period.IsClosed() {
			alreadyClosed = true
			status, err = r.statusOn(ctx, tx, period)
			return err
		}

		report, err := r.validateOn(ctx, tx, period)
		if err != nil {
			return err
		}
		if !report.CanClose() {
			return fault.New(fault.KindValidation, fault.CodeValidationFailed,
				"period %s cannot close: %d blocking issues", period.ID, countErrors(report))
		}

		snapshots, err := r.computeSnapshots(ctx, tx, period)
		if err != nil {
			return err
		}
		hash := service.CloseHash(period, snapshots)

		for _, s := range snapshots {
			if _, err := tx.Exec(ctx, `
				INSERT INTO period_summary_snapshots (tenant_id, period_id, currency, journal_count, line_count, total_debits_minor, total_credits_minor)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, s.TenantID, s.PeriodID, s.Currency, s.JournalCount, s.LineCount, s.TotalDebitsMinor, s.TotalCreditsMinor); err != nil {
				return fmt.Errorf("insert snapshot %s: %w", s.Currency, err)
			}
		}

		err = tx.QueryRow(ctx, `
			UPDATE accounting_periods
			SET close_requested_at = coalesce(close_requested_at, now()),
			    closed_at = now(),
			    closed_by = $3,
			    close_reason = nullif($4, ''),
			    close_hash = $5
			WHERE tenant_id = $1 AND id = $2
			RETURNING closed_at
		`, cmd.TenantID, cmd.PeriodID, cmd.ClosedBy, cmd.Reason, hash).Scan(&period.ClosedAt)
		if err != nil {
			return fmt.Errorf("seal period: %w", err)
		}
		period.ClosedBy = cmd.ClosedBy
		period.CloseReason = cmd.Reason
		period.CloseHash = hash

		closed := event.NewPeriodClosed(period.TenantID, period.ID, period.PeriodStart, period.PeriodEnd, hash, cmd.ClosedBy)
		if err := r.outbox.Append(ctx, tx, events.NewOutboxEntry(closed)); err != nil {
			return err
		}

		status = buildStatus(period, snapshots)
		return nil
	})
	if err != nil {
		return model.CloseStatus{}, false, classify(err)
	}
	return status, alreadyClosed, nil
}

func (r *PeriodRepo) computeSnapshots(ctx context.Context, q postgres.Querier, period model.AccountingPeriod) ([]model.PeriodSummarySnapshot, error) {
	rows, err := q.Query(ctx, `
		SELECT je.currency, count(DISTINCT je.id), count(jl.id), coalesce(sum(jl.debit_minor), 0), coalesce(sum(jl.credit_minor), 0)
		FROM journal_entries je
		JOIN journal_lines jl ON jl.journal_entry_id = je.id
		WHERE je.tenant_id = $1 AND je.posting_date BETWEEN $2 AND $3
		GROUP BY je.currency
		ORDER BY je.currency
	`, period.TenantID, period.PeriodStart, period.PeriodEnd)
	if err != nil {
		return nil, classify(fmt.Errorf("compute snapshots: %w", err))
	}
	defer rows.Close()

	var snapshots []model.PeriodSummarySnapshot
	for rows.Next() {
		s := model.PeriodSummarySnapshot{TenantID: period.TenantID, PeriodID: period.ID}
		if err := rows.Scan(&s.Currency, &s.JournalCount, &s.LineCount, &s.TotalDebitsMinor, &s.TotalCreditsMinor); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func (r *PeriodRepo) CloseStatus(ctx context.Context, tenantID, periodID uuid.UUID) (model.CloseStatus, error) {
	period, err := r.fetchPeriod(ctx, r.pool, tenantID, periodID, "")
	if err != nil {
		return model.CloseStatus{}, err
	}
	return r.statusOn(ctx, r.pool, period)
}

func (r *PeriodRepo) statusOn(ctx context.Context, q postgres.Querier, period model.AccountingPeriod) (model.CloseStatus, error) {
	rows, err := q.Query(ctx, `
		SELECT currency, journal_count, line_count, total_debits_minor, total_credits_minor, created_at
		FROM period_summary_snapshots
		WHERE tenant_id = $1 AND period_id = $2
		ORDER BY currency
	`, period.TenantID, period.ID)
	if err != nil {
		return model.CloseStatus{}, classify(fmt.Errorf("query snapshots: %w", err))
	}
	defer rows.Close()

	var snapshots []model.PeriodSummarySnapshot
	for rows.Next() {
		s := model.PeriodSummarySnapshot{TenantID: period.TenantID, PeriodID: period.ID}
		if err := rows.Scan(&s.Currency, &s.JournalCount, &s.LineCount, &s.TotalDebitsMinor, &s.TotalCreditsMinor, &s.CreatedAt); err != nil {
			return model.CloseStatus{}, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return model.CloseStatus{}, classify(err)
	}
	return buildStatus(period, snapshots), nil
}

func buildStatus(period model.AccountingPeriod, snapshots []model.PeriodSummarySnapshot) model.CloseStatus {
	return model.CloseStatus{
		PeriodID:         period.ID,
		TenantID:         period.TenantID,
		PeriodStart:      period.PeriodStart,
		PeriodEnd:        period.PeriodEnd,
		CloseRequestedAt: period.CloseRequestedAt,
		ClosedAt:         period.ClosedAt,
		ClosedBy:         period.ClosedBy,
		CloseReason:      period.CloseReason,
		CloseHash:        period.CloseHash,
		Snapshots:        snapshots,
	}
}

func countErrors(report model.CloseValidationReport) int {
	n := 0
	for _, issue := range report.Issues {
		if issue.Severity == model.SeverityError {
			n++
		}
	}
	return n
}
