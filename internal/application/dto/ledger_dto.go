package dto

import (
	"time"

	"github.com/google/uuid"
)

// PostingRequestPayload is the payload of a gl.posting.requested event. Amounts
// are decimal strings; the posting date is a calendar date (2006-01-02).
type PostingRequestPayload struct {
	PostingDate   string           `json:"posting_date"`
	Currency      string           `json:"currency"`
	SourceModule  string           `json:"source_module"`
	SourceDocType string           `json:"source_doc_type"`
	SourceDocID   string           `json:"source_doc_id"`
	Description   string           `json:"description"`
	Lines         []PostingLineDTO `json:"lines"`
}

// PostingLineDTO is one line of a posting request. Exactly one of Debit/Credit
// is expected to be a positive decimal string; the other is empty or "0".
type PostingLineDTO struct {
	AccountRef string            `json:"account_ref"`
	Debit      string            `json:"debit,omitempty"`
	Credit     string            `json:"credit,omitempty"`
	Memo       string            `json:"memo,omitempty"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
}

// ReversalRequestPayload is the payload of a gl.entry.reverse.requested event.
type ReversalRequestPayload struct {
	OriginalEntryID uuid.UUID `json:"original_entry_id"`
	Reason          string    `json:"reason,omitempty"`
}

// ValidateCloseRequest is the body of POST /periods/{id}/validate-close.
type ValidateCloseRequest struct {
	PeriodID uuid.UUID `json:"-"`
	TenantID uuid.UUID `json:"-"`
}

// CloseIssueDTO is one finding in a close validation report.
type CloseIssueDTO struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// ValidateCloseResponse reports whether the period can close and why not.
type ValidateCloseResponse struct {
	PeriodID uuid.UUID       `json:"period_id"`
	CanClose bool            `json:"can_close"`
	Issues   []CloseIssueDTO `json:"issues"`
}

// ClosePeriodRequest is the body of POST /periods/{id}/close.
type ClosePeriodRequest struct {
	PeriodID uuid.UUID `json:"-"`
	TenantID uuid.UUID `json:"-"`
	ClosedBy string    `json:"-"`
	Reason   string    `json:"reason,omitempty"`
}

// ClosePeriodResponse is the result of a close command. AlreadyClosed is true
// when the period had been sealed by an earlier call; the hash and timestamps
// are then the original ones.
type ClosePeriodResponse struct {
	PeriodID      uuid.UUID `json:"period_id"`
	ClosedAt      time.Time `json:"closed_at"`
	ClosedBy      string    `json:"closed_by"`
	CloseHash     string    `json:"close_hash"`
	AlreadyClosed bool      `json:"already_closed"`
}

// PeriodSnapshotDTO is one per-currency summary row frozen at close.
type PeriodSnapshotDTO struct {
	Currency          string `json:"currency"`
	JournalCount      int64  `json:"journal_count"`
	LineCount         int64  `json:"line_count"`
	TotalDebitsMinor  int64  `json:"total_debits_minor"`
	TotalCreditsMinor int64  `json:"total_credits_minor"`
}

// AccountResponse is the body of GET /accounts/{code}.
type AccountResponse struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	NormalBalance string `json:"normal_balance"`
	IsActive      bool   `json:"is_active"`
}

// BalanceRowDTO is one account/currency roll-up row.
type BalanceRowDTO struct {
	AccountCode        string    `json:"account_code"`
	Currency           string    `json:"currency"`
	DebitTotalMinor    int64     `json:"debit_total_minor"`
	CreditTotalMinor   int64     `json:"credit_total_minor"`
	NetBalanceMinor    int64     `json:"net_balance_minor"`
	LastJournalEntryID uuid.UUID `json:"last_journal_entry_id"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ListBalancesResponse is the body of GET /periods/{id}/balances.
type ListBalancesResponse struct {
	PeriodID uuid.UUID       `json:"period_id"`
	Balances []BalanceRowDTO `json:"balances"`
}

// JournalLineDTO is one line of a stored journal entry.
type JournalLineDTO struct {
	LineNo      int    `json:"line_no"`
	AccountRef  string `json:"account_ref"`
	DebitMinor  int64  `json:"debit_minor"`
	CreditMinor int64  `json:"credit_minor"`
	Memo        string `json:"memo,omitempty"`
}

// JournalEntryResponse is the body of GET /entries/{id}.
type JournalEntryResponse struct {
	ID              uuid.UUID        `json:"id"`
	SourceModule    string           `json:"source_module"`
	SourceEventID   uuid.UUID        `json:"source_event_id"`
	PostedAt        time.Time        `json:"posted_at"`
	PostingDate     string           `json:"posting_date"`
	Currency        string           `json:"currency"`
	Description     string           `json:"description,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty"`
	ReferenceID     string           `json:"reference_id,omitempty"`
	ReversesEntryID *uuid.UUID       `json:"reverses_entry_id,omitempty"`
	Lines           []JournalLineDTO `json:"lines"`
}

// CloseStatusResponse is the body of GET /periods/{id}/close-status.
type CloseStatusResponse struct {
	PeriodID    uuid.UUID           `json:"period_id"`
	PeriodStart string              `json:"period_start"`
	PeriodEnd   string              `json:"period_end"`
	Closed      bool                `json:"closed"`
	ClosedAt    *time.Time          `json:"closed_at,omitempty"`
	ClosedBy    string              `json:"closed_by,omitempty"`
	CloseReason string              `json:"close_reason,omitempty"`
	CloseHash   string              `json:"close_hash,omitempty"`
	Snapshots   []PeriodSnapshotDTO `json:"snapshots,omitempty"`
}
