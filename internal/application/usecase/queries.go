package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks/internal/application/dto"
	"github.com/finbooks/finbooks/internal/domain/port"
)

// GetAccount reads one chart-of-accounts row.
type GetAccount struct {
	accountRepo port.AccountRepository
}

func NewGetAccount(accountRepo port.AccountRepository) *GetAccount {
	return &GetAccount{accountRepo: accountRepo}
}

func (uc *GetAccount) Execute(ctx context.Context, tenantID uuid.UUID, code string) (dto.AccountResponse, error) {
	acc, err := uc.accountRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return dto.AccountResponse{}, err
	}
	return dto.AccountResponse{
		Code:          acc.Code,
		Name:          acc.Name,
		Type:          string(acc.Type),
		NormalBalance: string(acc.NormalBalance),
		IsActive:      acc.IsActive,
	}, nil
}

// ListBalances reads the roll-up for a period.
type ListBalances struct {
	balanceRepo port.BalanceRepository
}

func NewListBalances(balanceRepo port.BalanceRepository) *ListBalances {
	return &ListBalances{balanceRepo: balanceRepo}
}

func (uc *ListBalances) Execute(ctx context.Context, tenantID, periodID uuid.UUID) (dto.ListBalancesResponse, error) {
	rows, err := uc.balanceRepo.ListByPeriod(ctx, tenantID, periodID)
	if err != nil {
		return dto.ListBalancesResponse{}, err
	}

	resp := dto.ListBalancesResponse{
		PeriodID: periodID,
		Balances: make([]dto.BalanceRowDTO, 0, len(rows)),
	}
	for _, b := range rows {
		resp.Balances = append(resp.Balances, dto.BalanceRowDTO{
			AccountCode:        b.AccountCode,
			Currency:           b.Currency,
			DebitTotalMinor:    b.DebitTotalMinor,
			CreditTotalMinor:   b.CreditTotalMinor,
			NetBalanceMinor:    b.NetBalanceMinor,
			LastJournalEntryID: b.LastJournalEntryID,
			UpdatedAt:          b.UpdatedAt,
		})
	}
	return resp, nil
}

// GetJournalEntry reads one entry with its lines.
type GetJournalEntry struct {
	journalRepo port.JournalRepository
}

func NewGetJournalEntry(journalRepo port.JournalRepository) *GetJournalEntry {
	return &GetJournalEntry{journalRepo: journalRepo}
}

func (uc *GetJournalEntry) Execute(ctx context.Context, tenantID, id uuid.UUID) (dto.JournalEntryResponse, error) {
	entry, err := uc.journalRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return dto.JournalEntryResponse{}, err
	}

	resp := dto.JournalEntryResponse{
		ID:              entry.ID,
		SourceModule:    entry.SourceModule,
		SourceEventID:   entry.SourceEventID,
		PostedAt:        entry.PostedAt,
		PostingDate:     entry.PostingDate.Format(postingDateLayout),
		Currency:        entry.Currency,
		Description:     entry.Description,
		ReferenceType:   entry.ReferenceType,
		ReferenceID:     entry.ReferenceID,
		ReversesEntryID: entry.ReversesEntryID,
		Lines:           make([]dto.JournalLineDTO, 0, len(entry.Lines)),
	}
	for _, line := range entry.Lines {
		resp.Lines = append(resp.Lines, dto.JournalLineDTO{
			LineNo:      line.LineNo,
			AccountRef:  line.AccountRef,
			DebitMinor:  line.DebitMinor,
			CreditMinor: line.CreditMinor,
			Memo:        line.Memo,
		})
	}
	return resp, nil
}
