package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/domain/model"
)

func februaryPeriod() model.AccountingPeriod {
	return model.AccountingPeriod{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		PeriodStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	}
}

func TestCheckNoPendingDLQBlocksOnPeriodAndMalformedDates(t *testing.T) {
	repo := &PeriodRepo{}
	period := februaryPeriod()

	// Dead-lettered posting payloads are untrusted: a date that does not
	// parse cannot be placed outside the period and must block the close.
	q := &fakeQuerier{queryFunc: func(_ string, _ []any) (pgx.Rows, error) {
		return &fakeRows{rows: [][]any{
			{"2024-02-10"},
			{"2024-13-45"},
			{""},
			{"2023-12-31"},
		}}, nil
	}}

	var report model.CloseValidationReport
	require.NoError(t, repo.checkNoPendingDLQ(context.Background(), q, period, &report))

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, model.SeverityError, issue.Severity)
	assert.Equal(t, issueUnprocessedEvents, issue.Code)
	assert.Contains(t, issue.Message, "3 posting requests")
}

func TestCheckNoPendingDLQIgnoresOtherPeriods(t *testing.T) {
	repo := &PeriodRepo{}
	period := februaryPeriod()

	q := &fakeQuerier{queryFunc: func(_ string, _ []any) (pgx.Rows, error) {
		return &fakeRows{rows: [][]any{
			{"2023-12-31"},
			{"2024-03-01"},
		}}, nil
	}}

	var report model.CloseValidationReport
	require.NoError(t, repo.checkNoPendingDLQ(context.Background(), q, period, &report))
	assert.Empty(t, report.Issues)
}
