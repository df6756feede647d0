package model

import (
	"time"

	"github.com/google/uuid"
)

// PeriodSummarySnapshot is the per-currency aggregate frozen at close time.
type PeriodSummarySnapshot struct {
	TenantID          uuid.UUID
	PeriodID          uuid.UUID
	Currency          string
	JournalCount      int64
	LineCount         int64
	TotalDebitsMinor  int64
	TotalCreditsMinor int64
	CreatedAt         time.Time
}

// CloseStatus is the close-lifecycle state of a period. A repeated close call
// returns the existing status; callers distinguish "just closed" from
// "was already closed" by ClosedAt.
type CloseStatus struct {
	PeriodID         uuid.UUID
	TenantID         uuid.UUID
	PeriodStart      time.Time
	PeriodEnd        time.Time
	CloseRequestedAt *time.Time
	ClosedAt         *time.Time
	ClosedBy         string
	CloseReason      string
	CloseHash        string
	Snapshots        []PeriodSummarySnapshot
}

// Severity levels for close validation issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// CloseValidationIssue is one finding from pre-close validation.
type CloseValidationIssue struct {
	Severity string
	Code     string
	Message  string
}

// CloseValidationReport is the result of validating that a period can close.
type CloseValidationReport struct {
	PeriodID uuid.UUID
	Issues   []CloseValidationIssue
}

// CanClose reports whether no blocking issue was found. Only error-severity
// issues block a close.
func (r CloseValidationReport) CanClose() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return false
		}
	}
	return true
}
