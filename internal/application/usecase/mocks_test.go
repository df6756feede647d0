package usecase_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks/internal/domain/model"
)

// mockJournalRepository implements port.JournalRepository for testing.
type mockJournalRepository struct {
	created      []*model.JournalEntry
	consumers    []string
	createFunc   func(ctx context.Context, entry *model.JournalEntry, consumer string) error
	findByIDFunc func(ctx context.Context, tenantID, id uuid.UUID) (*model.JournalEntry, error)
}

func (m *mockJournalRepository) CreatePosted(ctx context.Context, entry *model.JournalEntry, consumer string) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry, consumer)
	}
	m.created = append(m.created, entry)
	m.consumers = append(m.consumers, consumer)
	return nil
}

func (m *mockJournalRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.JournalEntry, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return nil, fmt.Errorf("entry not found: %s", id)
}

// mockPeriodRepository implements port.PeriodRepository for testing.
type mockPeriodRepository struct {
	validateFunc func(ctx context.Context, tenantID, periodID uuid.UUID) (model.CloseValidationReport, error)
	closeFunc    func(ctx context.Context, cmd model.CloseCommand) (model.CloseStatus, bool, error)
	statusFunc   func(ctx context.Context, tenantID, periodID uuid.UUID) (model.CloseStatus, error)
}

func (m *mockPeriodRepository) FindByID(_ context.Context, _ uuid.UUID, periodID uuid.UUID) (model.AccountingPeriod, error) {
	return model.AccountingPeriod{ID: periodID}, nil
}

func (m *mockPeriodRepository) ValidateClose(ctx context.Context, tenantID, periodID uuid.UUID) (model.CloseValidationReport, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, tenantID, periodID)
	}
	return model.CloseValidationReport{PeriodID: periodID}, nil
}

func (m *mockPeriodRepository) Close(ctx context.Context, cmd model.CloseCommand) (model.CloseStatus, bool, error) {
	if m.closeFunc != nil {
		return m.closeFunc(ctx, cmd)
	}
	return model.CloseStatus{PeriodID: cmd.PeriodID}, false, nil
}

func (m *mockPeriodRepository) CloseStatus(ctx context.Context, tenantID, periodID uuid.UUID) (model.CloseStatus, error) {
	if m.statusFunc != nil {
		return m.statusFunc(ctx, tenantID, periodID)
	}
	return model.CloseStatus{PeriodID: periodID}, nil
}

// mockAccountRepository implements port.AccountRepository for testing.
type mockAccountRepository struct {
	findByCodeFunc func(ctx context.Context, tenantID uuid.UUID, code string) (model.Account, error)
}

func (m *mockAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (model.Account, error) {
	if m.findByCodeFunc != nil {
		return m.findByCodeFunc(ctx, tenantID, code)
	}
	return model.Account{}, fmt.Errorf("account not found: %s", code)
}

// mockBalanceRepository implements port.BalanceRepository for testing.
type mockBalanceRepository struct {
	listFunc func(ctx context.Context, tenantID, periodID uuid.UUID) ([]model.BalanceRollup, error)
}

func (m *mockBalanceRepository) ListByPeriod(ctx context.Context, tenantID, periodID uuid.UUID) ([]model.BalanceRollup, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, tenantID, periodID)
	}
	return nil, nil
}
