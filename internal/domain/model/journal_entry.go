package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks/internal/domain/valueobject"
	"github.com/finbooks/finbooks/pkg/events"
	"github.com/finbooks/finbooks/pkg/fault"
)

// ReversalMemoPrefix is prepended to every line memo on a reversal entry.
const ReversalMemoPrefix = "REVERSAL: "

// JournalLine is a single debit or credit within a journal entry. Exactly one
// of DebitMinor/CreditMinor is nonzero; both are non-negative. Lines share
// the parent entry's currency and lifetime.
type JournalLine struct {
	ID             uuid.UUID
	JournalEntryID uuid.UUID
	LineNo         int
	AccountRef     string
	DebitMinor     int64
	CreditMinor    int64
	Memo           string
}

// JournalEntry is an immutable double-entry transaction. SourceEventID is the
// posting-level idempotency anchor: it is unique across the tenant's ledger,
// so a concurrent duplicate delivery loses the insert and is absorbed.
type JournalEntry struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	SourceModule    string
	SourceEventID   uuid.UUID
	SourceSubject   string
	PostedAt        time.Time
	PostingDate     time.Time
	Currency        string
	Description     string
	ReferenceType   string
	ReferenceID     string
	ReversesEntryID *uuid.UUID
	Lines           []JournalLine

	events.Collector
}

// NewJournalEntry assembles an entry and enforces the balanced-entry
// invariant over the already-scaled lines. Line numbers are assigned in
// payload order starting at 1.
func NewJournalEntry(
	tenantID uuid.UUID,
	sourceModule string,
	sourceEventID uuid.UUID,
	sourceSubject string,
	postingDate time.Time,
	currency string,
	description string,
	referenceType valueobject.SourceDocType,
	referenceID string,
	lines []JournalLine,
) (*JournalEntry, error) {
	if tenantID == uuid.Nil {
		return nil, fault.New(fault.KindValidation, fault.CodeValidationFailed, "tenant id is required")
	}
	if sourceEventID == uuid.Nil {
		return nil, fault.New(fault.KindValidation, fault.CodeValidationFailed, "source event id is required")
	}
	if err := ValidateLines(lines); err != nil {
		return nil, err
	}

	id := uuid.New()
	entry := &JournalEntry{
		ID:            id,
		TenantID:      tenantID,
		SourceModule:  sourceModule,
		SourceEventID: sourceEventID,
		SourceSubject: sourceSubject,
		PostedAt:      time.Now().UTC(),
		PostingDate:   postingDate,
		Currency:      currency,
		Description:   description,
		ReferenceType: referenceType.String(),
		ReferenceID:   referenceID,
		Lines:         make([]JournalLine, len(lines)),
	}
	for i, line := range lines {
		line.ID = uuid.New()
		line.JournalEntryID = id
		line.LineNo = i + 1
		entry.Lines[i] = line
	}
	return entry, nil
}

// ValidateLines enforces the line-level invariants: at least two lines,
// exactly one positive side per line, and Σ debit == Σ credit.
func ValidateLines(lines []JournalLine) error {
	if len(lines) < 2 {
		return fault.New(fault.KindValidation, fault.CodeValidationFailed,
			"journal entry requires at least 2 lines, got %d", len(lines))
	}

	var debits, credits int64
	for i, line := range lines {
		if line.AccountRef == "" {
			return fault.New(fault.KindValidation, fault.CodeValidationFailed,
				"line %d: account reference is required", i+1)
		}
		if line.DebitMinor < 0 || line.CreditMinor < 0 {
			return fault.New(fault.KindValidation, fault.CodeValidationFailed,
				"line %d: amounts must be non-negative", i+1)
		}
		if (line.DebitMinor > 0) == (line.CreditMinor > 0) {
			return fault.New(fault.KindValidation, fault.CodeValidationFailed,
				"line %d: exactly one of debit or credit must be positive", i+1)
		}
		debits += line.DebitMinor
		credits += line.CreditMinor
	}

	if debits != credits {
		return fault.New(fault.KindValidation, fault.CodeNotBalanced,
			"entry not balanced: debits %d != credits %d", debits, credits)
	}
	return nil
}

// BuildReversal produces the inverse entry: same accounts and line order with
// debit and credit swapped, memos prefixed, ReversesEntryID pointing back at
// the original. The reversal posts at its own moment, not the original's
// date, so it books into a currently open period. Reversing a reversal is
// rejected here.
func (e *JournalEntry) BuildReversal(sourceEventID uuid.UUID, sourceSubject, reason string, now time.Time) (*JournalEntry, error) {
	if e.ReversesEntryID != nil {
		return nil, fault.New(fault.KindConflict, fault.CodeAlreadyReversed,
			"entry %s is itself a reversal", e.ID)
	}

	id := uuid.New()
	description := "Reversal of " + e.ID.String()
	if reason != "" {
		description += ": " + reason
	}

	reversal := &JournalEntry{
		ID:              id,
		TenantID:        e.TenantID,
		SourceModule:    e.SourceModule,
		SourceEventID:   sourceEventID,
		SourceSubject:   sourceSubject,
		PostedAt:        now,
		PostingDate:     now,
		Currency:        e.Currency,
		Description:     description,
		ReferenceType:   e.ReferenceType,
		ReferenceID:     e.ReferenceID,
		ReversesEntryID: &e.ID,
		Lines:           make([]JournalLine, len(e.Lines)),
	}
	for i, line := range e.Lines {
		reversal.Lines[i] = JournalLine{
			ID:             uuid.New(),
			JournalEntryID: id,
			LineNo:         line.LineNo,
			AccountRef:     line.AccountRef,
			DebitMinor:     line.CreditMinor,
			CreditMinor:    line.DebitMinor,
			Memo:           ReversalMemoPrefix + line.Memo,
		}
	}
	return reversal, nil
}

// BalanceDelta is the per-account contribution of an entry to the balance
// roll-up.
type BalanceDelta struct {
	AccountRef  string
	DebitMinor  int64
	CreditMinor int64
}

// BalanceDeltas groups the entry's lines by account, preserving first-seen
// order. Each committed entry is reflected exactly once per key.
func (e *JournalEntry) BalanceDeltas() []BalanceDelta {
	index := make(map[string]int, len(e.Lines))
	var deltas []BalanceDelta
	for _, line := range e.Lines {
		i, ok := index[line.AccountRef]
		if !ok {
			i = len(deltas)
			index[line.AccountRef] = i
			deltas = append(deltas, BalanceDelta{AccountRef: line.AccountRef})
		}
		deltas[i].DebitMinor += line.DebitMinor
		deltas[i].CreditMinor += line.CreditMinor
	}
	return deltas
}

// AccountRefs returns the distinct account codes referenced by the entry, in
// first-seen order. Used to deduplicate active-account lookups.
func (e *JournalEntry) AccountRefs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	var refs []string
	for _, line := range e.Lines {
		if _, ok := seen[line.AccountRef]; ok {
			continue
		}
		seen[line.AccountRef] = struct{}{}
		refs = append(refs, line.AccountRef)
	}
	return refs
}
