package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/domain/port"
)

// GetBalanceUseCase handles balance retrieval
type GetBalanceUseCase struct {
	store port.AccountStore
}

// NewGetBalanceUseCase creates a new GetBalanceUseCase
func NewGetBalanceUseCase(store port.AccountStore) *GetBalanceUseCase {
	return &GetBalanceUseCase{
		store: store,
	}
}

// Execute returns the current balance for an account. The account id must be
// all digits; the format check happens before any store read.
func (uc *GetBalanceUseCase) Execute(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if err := entity.ValidateAccountID(accountID); err != nil {
		return decimal.Zero, err
	}

	account, err := uc.store.Get(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.CurrentBalance, nil
}
