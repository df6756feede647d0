package model

import (
	"time"

	"github.com/google/uuid"
)

// BalanceRollup is the running debit/credit accumulator for one
// (tenant, period, account, currency) key. It is updated inside the posting
// transaction with a single atomic upsert, so every committed entry is
// reflected exactly once.
type BalanceRollup struct {
	TenantID           uuid.UUID
	PeriodID           uuid.UUID
	AccountCode        string
	Currency           string
	DebitTotalMinor    int64
	CreditTotalMinor   int64
	NetBalanceMinor    int64
	LastJournalEntryID uuid.UUID
	UpdatedAt          time.Time
}
