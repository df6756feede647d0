package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/domain/model"
	"github.com/finbooks/finbooks/internal/domain/service"
)

func testPeriod(tenantID, periodID uuid.UUID) model.AccountingPeriod {
	return model.AccountingPeriod{
		ID:          periodID,
		TenantID:    tenantID,
		PeriodStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	}
}

func TestCloseHash_Deterministic(t *testing.T) {
	tenantID := uuid.New()
	periodID := uuid.New()
	period := testPeriod(tenantID, periodID)
	snapshots := []model.PeriodSummarySnapshot{
		{Currency: "USD", JournalCount: 1, LineCount: 2, TotalDebitsMinor: 100, TotalCreditsMinor: 100},
	}

	first := service.CloseHash(period, snapshots)
	second := service.CloseHash(period, snapshots)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.Equal(t, strings.ToLower(first), first)
}

func TestCloseHash_CurrencyOrderDoesNotMatter(t *testing.T) {
	tenantID := uuid.New()
	periodID := uuid.New()
	period := testPeriod(tenantID, periodID)

	usd := model.PeriodSummarySnapshot{Currency: "USD", JournalCount: 3, LineCount: 6, TotalDebitsMinor: 5000, TotalCreditsMinor: 5000}
	eur := model.PeriodSummarySnapshot{Currency: "EUR", JournalCount: 1, LineCount: 2, TotalDebitsMinor: 100, TotalCreditsMinor: 100}

	a := service.CloseHash(period, []model.PeriodSummarySnapshot{usd, eur})
	b := service.CloseHash(period, []model.PeriodSummarySnapshot{eur, usd})
	assert.Equal(t, a, b)
}

func TestCloseHash_SensitiveToEveryField(t *testing.T) {
	tenantID := uuid.New()
	periodID := uuid.New()
	period := testPeriod(tenantID, periodID)
	base := model.PeriodSummarySnapshot{Currency: "USD", JournalCount: 1, LineCount: 2, TotalDebitsMinor: 100, TotalCreditsMinor: 100}

	reference := service.CloseHash(period, []model.PeriodSummarySnapshot{base})

	mutations := []model.PeriodSummarySnapshot{
		{Currency: "EUR", JournalCount: 1, LineCount: 2, TotalDebitsMinor: 100, TotalCreditsMinor: 100},
		{Currency: "USD", JournalCount: 2, LineCount: 2, TotalDebitsMinor: 100, TotalCreditsMinor: 100},
		{Currency: "USD", JournalCount: 1, LineCount: 4, TotalDebitsMinor: 100, TotalCreditsMinor: 100},
		{Currency: "USD", JournalCount: 1, LineCount: 2, TotalDebitsMinor: 200, TotalCreditsMinor: 100},
		{Currency: "USD", JournalCount: 1, LineCount: 2, TotalDebitsMinor: 100, TotalCreditsMinor: 200},
	}
	for _, m := range mutations {
		assert.NotEqual(t, reference, service.CloseHash(period, []model.PeriodSummarySnapshot{m}))
	}

	otherPeriod := testPeriod(tenantID, uuid.New())
	assert.NotEqual(t, reference, service.CloseHash(otherPeriod, []model.PeriodSummarySnapshot{base}))

	otherTenant := testPeriod(uuid.New(), periodID)
	assert.NotEqual(t, reference, service.CloseHash(otherTenant, []model.PeriodSummarySnapshot{base}))
}

func TestCloseHash_IdenticalLedgersMatchAcrossPeriods(t *testing.T) {
	// Two tenants with identical period bounds and identical snapshot content
	// but their own ids produce equal hashes only when ids also match, so
	// equality requires the full tuple.
	tenantID := uuid.New()
	periodID := uuid.New()
	snapshots := []model.PeriodSummarySnapshot{
		{Currency: "USD", JournalCount: 1, LineCount: 2, TotalDebitsMinor: 100, TotalCreditsMinor: 100},
	}

	a := service.CloseHash(testPeriod(tenantID, periodID), snapshots)
	b := service.CloseHash(testPeriod(tenantID, periodID), snapshots)
	require.Equal(t, a, b)
}

func TestCloseHash_EmptyPeriod(t *testing.T) {
	period := testPeriod(uuid.New(), uuid.New())

	hash := service.CloseHash(period, nil)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, service.CloseHash(period, []model.PeriodSummarySnapshot{}))
}
