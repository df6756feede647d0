package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks/internal/domain/model"
)

// JournalRepository defines persistence operations for journal entries. The
// implementation owns the posting transaction: governance checks, entry and
// line inserts, balance upserts, the processed-events record and the staged
// outbox rows all commit or roll back together.
type JournalRepository interface {
	// CreatePosted runs the full posting transaction for an entry. The
	// consumer name keys the idempotency record. A re-delivery of an already
	// committed source event returns a Duplicate fault.
	CreatePosted(ctx context.Context, entry *model.JournalEntry, consumer string) error
	// FindByID retrieves a journal entry with its lines.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.JournalEntry, error)
}

// BalanceRepository reads the balance roll-up.
type BalanceRepository interface {
	// ListByPeriod returns the roll-up rows for a period, ordered by account
	// code then currency.
	ListByPeriod(ctx context.Context, tenantID, periodID uuid.UUID) ([]model.BalanceRollup, error)
}

// PeriodRepository defines persistence operations for accounting periods and
// the close lifecycle.
type PeriodRepository interface {
	// FindByID retrieves a period.
	FindByID(ctx context.Context, tenantID, periodID uuid.UUID) (model.AccountingPeriod, error)
	// ValidateClose runs the pre-close checks and returns the report without
	// mutating anything.
	ValidateClose(ctx context.Context, tenantID, periodID uuid.UUID) (model.CloseValidationReport, error)
	// Close seals the period in one serializable transaction and returns the
	// resulting status. Closing an already-closed period returns the existing
	// status unchanged with alreadyClosed set.
	Close(ctx context.Context, cmd model.CloseCommand) (status model.CloseStatus, alreadyClosed bool, err error)
	// CloseStatus returns the close-lifecycle state with snapshots.
	CloseStatus(ctx context.Context, tenantID, periodID uuid.UUID) (model.CloseStatus, error)
}

// AccountRepository reads the chart of accounts.
type AccountRepository interface {
	// FindByCode retrieves one account.
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (model.Account, error)
}
