package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks/internal/application/dto"
	"github.com/finbooks/finbooks/internal/domain/event"
	"github.com/finbooks/finbooks/internal/domain/port"
	"github.com/finbooks/finbooks/pkg/events"
	"github.com/finbooks/finbooks/pkg/fault"
)

// ReverseEntry consumes gl.entry.reverse.requested envelopes and books the
// inverse of an existing entry. The reversal posts at the current date, so it
// lands in whatever period is open now; the original's period may already be
// closed.
type ReverseEntry struct {
	journalRepo port.JournalRepository
	now         func() time.Time
}

func NewReverseEntry(journalRepo port.JournalRepository) *ReverseEntry {
	return &ReverseEntry{journalRepo: journalRepo, now: func() time.Time { return time.Now().UTC() }}
}

func (uc *ReverseEntry) Handle(ctx context.Context, env events.Envelope) error {
	var payload dto.ReversalRequestPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "reversal payload")
	}
	if payload.OriginalEntryID == uuid.Nil {
		return fault.New(fault.KindValidation, fault.CodeValidationFailed, "original_entry_id is required")
	}

	original, err := uc.journalRepo.FindByID(ctx, env.TenantID, payload.OriginalEntryID)
	if err != nil {
		return err
	}

	subject, err := events.SubjectFor(env.EventType)
	if err != nil {
		return fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "event_type")
	}

	reversal, err := original.BuildReversal(env.EventID, subject, payload.Reason, uc.now())
	if err != nil {
		return err
	}

	reversed := event.NewEntryReversed(reversal.TenantID, original.ID, reversal.ID, reversal.Currency, reversal.PostedAt)
	reversed.BaseEvent = reversed.WithCausation(correlationOf(env), env.EventID.String())
	reversal.Record(reversed)

	return uc.journalRepo.CreatePosted(ctx, reversal, ConsumerReversal)
}
