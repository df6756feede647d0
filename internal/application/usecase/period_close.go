package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks/internal/application/dto"
	"github.com/finbooks/finbooks/internal/domain/model"
	"github.com/finbooks/finbooks/internal/domain/port"
)

// ValidateClose runs the pre-close checks without mutating the period.
type ValidateClose struct {
	periodRepo port.PeriodRepository
}

func NewValidateClose(periodRepo port.PeriodRepository) *ValidateClose {
	return &ValidateClose{periodRepo: periodRepo}
}

func (uc *ValidateClose) Execute(ctx context.Context, req dto.ValidateCloseRequest) (dto.ValidateCloseResponse, error) {
	report, err := uc.periodRepo.ValidateClose(ctx, req.TenantID, req.PeriodID)
	if err != nil {
		return dto.ValidateCloseResponse{}, err
	}

	resp := dto.ValidateCloseResponse{
		PeriodID: report.PeriodID,
		CanClose: report.CanClose(),
		Issues:   make([]dto.CloseIssueDTO, 0, len(report.Issues)),
	}
	for _, issue := range report.Issues {
		resp.Issues = append(resp.Issues, dto.CloseIssueDTO{
			Severity: issue.Severity,
			Code:     issue.Code,
			Message:  issue.Message,
		})
	}
	return resp, nil
}

// ClosePeriod seals a period. The repository owns the serializable close
// transaction; a repeat call is answered from the existing close record.
type ClosePeriod struct {
	periodRepo port.PeriodRepository
}

func NewClosePeriod(periodRepo port.PeriodRepository) *ClosePeriod {
	return &ClosePeriod{periodRepo: periodRepo}
}

func (uc *ClosePeriod) Execute(ctx context.Context, req dto.ClosePeriodRequest) (dto.ClosePeriodResponse, error) {
	status, alreadyClosed, err := uc.periodRepo.Close(ctx, model.CloseCommand{
		TenantID: req.TenantID,
		PeriodID: req.PeriodID,
		ClosedBy: req.ClosedBy,
		Reason:   req.Reason,
	})
	if err != nil {
		return dto.ClosePeriodResponse{}, err
	}

	resp := dto.ClosePeriodResponse{
		PeriodID:      status.PeriodID,
		ClosedBy:      status.ClosedBy,
		CloseHash:     status.CloseHash,
		AlreadyClosed: alreadyClosed,
	}
	if status.ClosedAt != nil {
		resp.ClosedAt = *status.ClosedAt
	}
	return resp, nil
}

// GetCloseStatus returns the close-lifecycle state of a period with its
// frozen snapshots.
type GetCloseStatus struct {
	periodRepo port.PeriodRepository
}

func NewGetCloseStatus(periodRepo port.PeriodRepository) *GetCloseStatus {
	return &GetCloseStatus{periodRepo: periodRepo}
}

func (uc *GetCloseStatus) Execute(ctx context.Context, tenantID, periodID uuid.UUID) (dto.CloseStatusResponse, error) {
	status, err := uc.periodRepo.CloseStatus(ctx, tenantID, periodID)
	if err != nil {
		return dto.CloseStatusResponse{}, err
	}

	resp := dto.CloseStatusResponse{
		PeriodID:    status.PeriodID,
		PeriodStart: status.PeriodStart.Format(postingDateLayout),
		PeriodEnd:   status.PeriodEnd.Format(postingDateLayout),
		Closed:      status.ClosedAt != nil,
		ClosedAt:    status.ClosedAt,
		ClosedBy:    status.ClosedBy,
		CloseReason: status.CloseReason,
		CloseHash:   status.CloseHash,
	}
	for _, s := range status.Snapshots {
		resp.Snapshots = append(resp.Snapshots, dto.PeriodSnapshotDTO{
			Currency:          s.Currency,
			JournalCount:      s.JournalCount,
			LineCount:         s.LineCount,
			TotalDebitsMinor:  s.TotalDebitsMinor,
			TotalCreditsMinor: s.TotalCreditsMinor,
		})
	}
	return resp, nil
}
