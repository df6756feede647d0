package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/application/dto"
	"github.com/finbooks/finbooks/internal/application/usecase"
	"github.com/finbooks/finbooks/internal/domain/model"
	"github.com/finbooks/finbooks/pkg/fault"
)

func TestValidateClose_ReportsIssues(t *testing.T) {
	periodID := uuid.New()
	repo := &mockPeriodRepository{
		validateFunc: func(_ context.Context, _, _ uuid.UUID) (model.CloseValidationReport, error) {
			return model.CloseValidationReport{
				PeriodID: periodID,
				Issues: []model.CloseValidationIssue{
					{Severity: model.SeverityError, Code: "UNPROCESSED_EVENTS", Message: "2 posting requests in DLQ"},
					{Severity: model.SeverityWarning, Code: "INACTIVE_ACCOUNT", Message: "account 9999 inactive"},
				},
			}, nil
		},
	}
	uc := usecase.NewValidateClose(repo)

	resp, err := uc.Execute(context.Background(), dto.ValidateCloseRequest{TenantID: uuid.New(), PeriodID: periodID})
	require.NoError(t, err)
	assert.False(t, resp.CanClose)
	require.Len(t, resp.Issues, 2)
	assert.Equal(t, "error", resp.Issues[0].Severity)
}

func TestValidateClose_CleanPeriod(t *testing.T) {
	repo := &mockPeriodRepository{}
	uc := usecase.NewValidateClose(repo)

	resp, err := uc.Execute(context.Background(), dto.ValidateCloseRequest{TenantID: uuid.New(), PeriodID: uuid.New()})
	require.NoError(t, err)
	assert.True(t, resp.CanClose)
	assert.Empty(t, resp.Issues)
}

func TestClosePeriod_Success(t *testing.T) {
	periodID := uuid.New()
	closedAt := time.Now().UTC()
	repo := &mockPeriodRepository{
		closeFunc: func(_ context.Context, cmd model.CloseCommand) (model.CloseStatus, bool, error) {
			assert.Equal(t, "jane.auditor", cmd.ClosedBy)
			return model.CloseStatus{
				PeriodID:  cmd.PeriodID,
				ClosedAt:  &closedAt,
				ClosedBy:  cmd.ClosedBy,
				CloseHash: "abc123",
			}, false, nil
		},
	}
	uc := usecase.NewClosePeriod(repo)

	resp, err := uc.Execute(context.Background(), dto.ClosePeriodRequest{
		TenantID: uuid.New(),
		PeriodID: periodID,
		ClosedBy: "jane.auditor",
		Reason:   "month end",
	})
	require.NoError(t, err)
	assert.Equal(t, periodID, resp.PeriodID)
	assert.Equal(t, "abc123", resp.CloseHash)
	assert.Equal(t, closedAt, resp.ClosedAt)
	assert.False(t, resp.AlreadyClosed)
}

func TestClosePeriod_AlreadyClosed(t *testing.T) {
	closedAt := time.Now().UTC().Add(-24 * time.Hour)
	repo := &mockPeriodRepository{
		closeFunc: func(_ context.Context, cmd model.CloseCommand) (model.CloseStatus, bool, error) {
			return model.CloseStatus{
				PeriodID:  cmd.PeriodID,
				ClosedAt:  &closedAt,
				CloseHash: "original-hash",
			}, true, nil
		},
	}
	uc := usecase.NewClosePeriod(repo)

	resp, err := uc.Execute(context.Background(), dto.ClosePeriodRequest{TenantID: uuid.New(), PeriodID: uuid.New()})
	require.NoError(t, err)
	assert.True(t, resp.AlreadyClosed)
	assert.Equal(t, "original-hash", resp.CloseHash)
	assert.Equal(t, closedAt, resp.ClosedAt)
}

func TestClosePeriod_ValidationFailure(t *testing.T) {
	repo := &mockPeriodRepository{
		closeFunc: func(_ context.Context, _ model.CloseCommand) (model.CloseStatus, bool, error) {
			return model.CloseStatus{}, false, fault.New(fault.KindValidation, fault.CodeValidationFailed, "2 blocking issues")
		},
	}
	uc := usecase.NewClosePeriod(repo)

	_, err := uc.Execute(context.Background(), dto.ClosePeriodRequest{TenantID: uuid.New(), PeriodID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, fault.CodeValidationFailed, fault.CodeOf(err))
}

func TestGetCloseStatus_OpenPeriod(t *testing.T) {
	periodID := uuid.New()
	repo := &mockPeriodRepository{
		statusFunc: func(_ context.Context, _, _ uuid.UUID) (model.CloseStatus, error) {
			return model.CloseStatus{
				PeriodID:    periodID,
				PeriodStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				PeriodEnd:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	uc := usecase.NewGetCloseStatus(repo)

	resp, err := uc.Execute(context.Background(), uuid.New(), periodID)
	require.NoError(t, err)
	assert.False(t, resp.Closed)
	assert.Equal(t, "2024-02-01", resp.PeriodStart)
	assert.Equal(t, "2024-02-29", resp.PeriodEnd)
	assert.Empty(t, resp.CloseHash)
}

func TestGetCloseStatus_ClosedPeriodWithSnapshots(t *testing.T) {
	periodID := uuid.New()
	closedAt := time.Now().UTC()
	repo := &mockPeriodRepository{
		statusFunc: func(_ context.Context, _, _ uuid.UUID) (model.CloseStatus, error) {
			return model.CloseStatus{
				PeriodID:    periodID,
				PeriodStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				PeriodEnd:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
				ClosedAt:    &closedAt,
				ClosedBy:    "jane.auditor",
				CloseHash:   "abc123",
				Snapshots: []model.PeriodSummarySnapshot{
					{Currency: "USD", JournalCount: 3, LineCount: 6, TotalDebitsMinor: 5000, TotalCreditsMinor: 5000},
				},
			}, nil
		},
	}
	uc := usecase.NewGetCloseStatus(repo)

	resp, err := uc.Execute(context.Background(), uuid.New(), periodID)
	require.NoError(t, err)
	assert.True(t, resp.Closed)
	assert.Equal(t, "abc123", resp.CloseHash)
	require.Len(t, resp.Snapshots, 1)
	assert.Equal(t, int64(3), resp.Snapshots[0].JournalCount)
}

func TestGetCloseStatus_NotFound(t *testing.T) {
	repo := &mockPeriodRepository{
		statusFunc: func(_ context.Context, _, periodID uuid.UUID) (model.CloseStatus, error) {
			return model.CloseStatus{}, fault.New(fault.KindNotFound, fault.CodeNoPeriodForDate, "period %s not found", periodID)
		},
	}
	uc := usecase.NewGetCloseStatus(repo)

	_, err := uc.Execute(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}
