package usecase

import (
	"context"
	"errors"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/domain/port"
)

// DepositUseCase handles deposits
type DepositUseCase struct {
	store port.AccountStore
}

// NewDepositUseCase creates a new DepositUseCase
func NewDepositUseCase(store port.AccountStore) *DepositUseCase {
	return &DepositUseCase{
		store: store,
	}
}

// Execute credits an account. The only precondition is that the account
// exists, checked atomically at update time. Existence is not verified
// beforehand; the store-level check is authoritative. There is no upper
// bound on the amount and no daily deposit limit.
func (uc *DepositUseCase) Execute(ctx context.Context, req entity.MutationRequest) (*entity.Account, error) {
	if req.AccountID == "" {
		return nil, entity.ErrInvalidAccountID
	}

	amount, err := req.ParsedAmount()
	if err != nil {
		return nil, err
	}

	account, err := uc.store.ConditionalUpdate(ctx, string(req.AccountID), port.BalanceMutation{
		Delta: amount,
	})
	if err != nil {
		var cf *port.ConditionFailedError
		if errors.As(err, &cf) {
			// The deposit precondition is existence alone, so a
			// rejection can only mean the account was absent.
			return nil, entity.ErrAccountNotFound
		}
		return nil, err
	}

	return account, nil
}
