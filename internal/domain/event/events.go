package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks/pkg/events"
)

const (
	AggregateTypeJournalEntry = "JournalEntry"
	AggregateTypePeriod       = "AccountingPeriod"
)

// EntryPosted is emitted when a journal entry commits.
type EntryPosted struct {
	events.BaseEvent
	EntryID     uuid.UUID `json:"entry_id"`
	Currency    string    `json:"currency"`
	PostingDate time.Time `json:"posting_date"`
}

func NewEntryPosted(tenantID, entryID uuid.UUID, currency string, postingDate time.Time) EntryPosted {
	payload, _ := json.Marshal(struct {
		EntryID     uuid.UUID `json:"entry_id"`
		Currency    string    `json:"currency"`
		PostingDate time.Time `json:"posting_date"`
	}{entryID, currency, postingDate})

	return EntryPosted{
		BaseEvent:   events.NewBaseEvent("gl.entry.posted", tenantID, entryID.String(), AggregateTypeJournalEntry, payload),
		EntryID:     entryID,
		Currency:    currency,
		PostingDate: postingDate,
	}
}

// EntryReversed is emitted when a reversal entry commits, carrying both the
// original and the reversal entry ids.
type EntryReversed struct {
	events.BaseEvent
	OriginalEntryID uuid.UUID `json:"original_entry_id"`
	ReversalEntryID uuid.UUID `json:"reversal_entry_id"`
	Currency        string    `json:"currency"`
	PostedAt        time.Time `json:"posted_at"`
}

func NewEntryReversed(tenantID, originalEntryID, reversalEntryID uuid.UUID, currency string, postedAt time.Time) EntryReversed {
	payload, _ := json.Marshal(struct {
		OriginalEntryID uuid.UUID `json:"original_entry_id"`
		ReversalEntryID uuid.UUID `json:"reversal_entry_id"`
		Currency        string    `json:"currency"`
		PostedAt        time.Time `json:"posted_at"`
	}{originalEntryID, reversalEntryID, currency, postedAt})

	return EntryReversed{
		BaseEvent:       events.NewBaseEvent("gl.entry.reversed", tenantID, reversalEntryID.String(), AggregateTypeJournalEntry, payload),
		OriginalEntryID: originalEntryID,
		ReversalEntryID: reversalEntryID,
		Currency:        currency,
		PostedAt:        postedAt,
	}
}

// PeriodClosed is emitted when a period is sealed. Downstream reporting
// consumers subscribe to it to trigger snapshot exports.
type PeriodClosed struct {
	events.BaseEvent
	PeriodID    uuid.UUID `json:"period_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	CloseHash   string    `json:"close_hash"`
	ClosedBy    string    `json:"closed_by"`
}

func NewPeriodClosed(tenantID, periodID uuid.UUID, periodStart, periodEnd time.Time, closeHash, closedBy string) PeriodClosed {
	payload, _ := json.Marshal(struct {
		PeriodID    uuid.UUID `json:"period_id"`
		PeriodStart time.Time `json:"period_start"`
		PeriodEnd   time.Time `json:"period_end"`
		CloseHash   string    `json:"close_hash"`
		ClosedBy    string    `json:"closed_by"`
	}{periodID, periodStart, periodEnd, closeHash, closedBy})

	return PeriodClosed{
		BaseEvent:   events.NewBaseEvent("gl.period.closed", tenantID, periodID.String(), AggregateTypePeriod, payload),
		PeriodID:    periodID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		CloseHash:   closeHash,
		ClosedBy:    closedBy,
	}
}
