package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/finbooks/finbooks/internal/application/dto"
	"github.com/finbooks/finbooks/internal/domain/event"
	"github.com/finbooks/finbooks/internal/domain/model"
	"github.com/finbooks/finbooks/internal/domain/port"
	"github.com/finbooks/finbooks/internal/domain/service"
	"github.com/finbooks/finbooks/internal/domain/valueobject"
	"github.com/finbooks/finbooks/pkg/events"
	"github.com/finbooks/finbooks/pkg/fault"
)

// Consumer names key the processed-events ledger. Changing one resets that
// consumer's dedupe history.
const (
	ConsumerPosting  = "gl-posting"
	ConsumerReversal = "gl-reversal"
)

const postingDateLayout = "2006-01-02"

// PostJournalEntry consumes gl.posting.requested envelopes and books the
// requested entry. All storage effects happen in one transaction owned by the
// journal repository.
type PostJournalEntry struct {
	journalRepo port.JournalRepository
	validator   *service.PostingValidator
}

func NewPostJournalEntry(journalRepo port.JournalRepository, validator *service.PostingValidator) *PostJournalEntry {
	return &PostJournalEntry{journalRepo: journalRepo, validator: validator}
}

// Handle books one posting request. The envelope's event id is the
// idempotency anchor: replays either hit the processed-events ledger before
// this runs or surface as a Duplicate fault from the repository.
func (uc *PostJournalEntry) Handle(ctx context.Context, env events.Envelope) error {
	var payload dto.PostingRequestPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "posting payload")
	}

	postingDate, err := time.ParseInLocation(postingDateLayout, payload.PostingDate, time.UTC)
	if err != nil {
		return fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "posting_date")
	}

	docType, err := valueobject.NewSourceDocType(payload.SourceDocType)
	if err != nil {
		return fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "source_doc_type")
	}

	inputs := make([]service.LineInput, len(payload.Lines))
	for i, line := range payload.Lines {
		inputs[i] = service.LineInput{
			AccountRef: line.AccountRef,
			Debit:      line.Debit,
			Credit:     line.Credit,
			Memo:       line.Memo,
		}
	}
	lines, err := uc.validator.BuildLines(payload.Currency, inputs)
	if err != nil {
		return err
	}

	sourceModule := payload.SourceModule
	if sourceModule == "" {
		sourceModule = env.Producer
	}
	subject, err := events.SubjectFor(env.EventType)
	if err != nil {
		return fault.Wrapf(fault.KindValidation, fault.CodeValidationFailed, err, "event_type")
	}

	entry, err := model.NewJournalEntry(
		env.TenantID,
		sourceModule,
		env.EventID,
		subject,
		postingDate,
		payload.Currency,
		payload.Description,
		docType,
		payload.SourceDocID,
		lines,
	)
	if err != nil {
		return err
	}

	posted := event.NewEntryPosted(entry.TenantID, entry.ID, entry.Currency, entry.PostingDate)
	posted.BaseEvent = posted.WithCausation(correlationOf(env), env.EventID.String())
	entry.Record(posted)

	return uc.journalRepo.CreatePosted(ctx, entry, ConsumerPosting)
}

// correlationOf keeps the incoming correlation chain alive, starting a new one
// at the triggering event when the producer did not set it.
func correlationOf(env events.Envelope) string {
	if env.CorrelationID != "" {
		return env.CorrelationID
	}
	return env.EventID.String()
}
