package service

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/finbooks/finbooks/internal/domain/model"
)

// closeHashDateLayout fixes the date rendering inside the hash input. Periods
// are calendar dates, so the time portion never participates.
const closeHashDateLayout = "2006-01-02"

// CloseHash computes the deterministic digest sealing a period. The input is
// the canonical serialization
//
//	tenant_id|period_id|period_start|period_end|<groups>
//
// where <groups> is the per-currency fields
// currency|journal_count|line_count|total_debits_minor|total_credits_minor
// in strictly ascending currency order, all joined by a single "|" with no
// trailing delimiter. The digest is lowercase hex SHA-256. Two independent
// closes over the same ledger state produce byte-identical hashes.
func CloseHash(period model.AccountingPeriod, snapshots []model.PeriodSummarySnapshot) string {
	sorted := make([]model.PeriodSummarySnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Currency < sorted[j].Currency
	})

	parts := []string{
		period.TenantID.String(),
		period.ID.String(),
		period.PeriodStart.UTC().Format(closeHashDateLayout),
		period.PeriodEnd.UTC().Format(closeHashDateLayout),
	}
	for _, s := range sorted {
		parts = append(parts,
			s.Currency,
			strconv.FormatInt(s.JournalCount, 10),
			strconv.FormatInt(s.LineCount, 10),
			strconv.FormatInt(s.TotalDebitsMinor, 10),
			strconv.FormatInt(s.TotalCreditsMinor, 10),
		)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
