package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain/model"
	"github.com/finbooks/finbooks/internal/domain/port"
	"github.com/finbooks/finbooks/pkg/fault"
)

// Compile-time interface check
var _ port.AccountRepository = (*AccountRepo)(nil)

// AccountRepo reads the chart of accounts.
type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (model.Account, error) {
	var acc model.Account
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, code, name, type, normal_balance, is_active, created_at
		FROM accounts
		WHERE tenant_id = $1 AND code = $2
	`, tenantID, code).Scan(&acc.TenantID, &acc.Code, &acc.Name, &acc.Type, &acc.NormalBalance, &acc.IsActive, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, fault.New(fault.KindNotFound, fault.CodeAccountNotFound, "account %s not found", code)
	}
	if err != nil {
		return model.Account{}, classify(fmt.Errorf("query account: %w", err))
	}
	return acc, nil
}
