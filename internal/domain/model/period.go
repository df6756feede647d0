package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountingPeriod is a contiguous, tenant-scoped posting window. Periods
// within a tenant do not overlap. Once ClosedAt is set the period is sealed:
// no new posting may land inside it (the hard lock).
type AccountingPeriod struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	PeriodStart      time.Time // inclusive date
	PeriodEnd        time.Time // inclusive date
	CloseRequestedAt *time.Time
	ClosedAt         *time.Time
	ClosedBy         string
	CloseReason      string
	CloseHash        string
}

// Contains reports whether the date falls inside the period, inclusive on
// both ends. Only the calendar date matters.
func (p AccountingPeriod) Contains(date time.Time) bool {
	d := date.UTC().Truncate(24 * time.Hour)
	return !d.Before(p.PeriodStart) && !d.After(p.PeriodEnd)
}

// IsClosed reports whether the period has been sealed.
func (p AccountingPeriod) IsClosed() bool {
	return p.ClosedAt != nil
}

// CloseCommand requests sealing a period.
type CloseCommand struct {
	TenantID uuid.UUID
	PeriodID uuid.UUID
	ClosedBy string
	Reason   string
}
