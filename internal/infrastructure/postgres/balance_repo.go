package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain/model"
	"github.com/finbooks/finbooks/internal/domain/port"
)

// Compile-time interface check
var _ port.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo reads the balance roll-up. Writes happen inside the posting
// transaction owned by JournalRepo.
type BalanceRepo struct {
	pool *pgxpool.Pool
}

func NewBalanceRepo(pool *pgxpool.Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

func (r *BalanceRepo) ListByPeriod(ctx context.Context, tenantID, periodID uuid.UUID) ([]model.BalanceRollup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tenant_id, period_id, account_code, currency, debit_total_minor, credit_total_minor, net_balance_minor, last_journal_entry_id, updated_at
		FROM account_balances
		WHERE tenant_id = $1 AND period_id = $2
		ORDER BY account_code, currency
	`, tenantID, periodID)
	if err != nil {
		return nil, classify(fmt.Errorf("query balances: %w", err))
	}
	defer rows.Close()

	var balances []model.BalanceRollup
	for rows.Next() {
		var b model.BalanceRollup
		if err := rows.Scan(&b.TenantID, &b.PeriodID, &b.AccountCode, &b.Currency,
			&b.DebitTotalMinor, &b.CreditTotalMinor, &b.NetBalanceMinor,
			&b.LastJournalEntryID, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
