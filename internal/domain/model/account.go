package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountType classifies a chart-of-accounts entry.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// NormalBalance is the side an account naturally carries its balance on.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "debit"
	NormalCredit NormalBalance = "credit"
)

// Account is a chart-of-accounts row. Immutable once created except for
// IsActive.
type Account struct {
	TenantID      uuid.UUID
	Code          string
	Name          string
	Type          AccountType
	NormalBalance NormalBalance
	IsActive      bool
	CreatedAt     time.Time
}
