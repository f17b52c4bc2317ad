package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/domain/port"
)

// WithdrawUseCase handles withdrawals
type WithdrawUseCase struct {
	store port.AccountStore
}

// NewWithdrawUseCase creates a new WithdrawUseCase
func NewWithdrawUseCase(store port.AccountStore) *WithdrawUseCase {
	return &WithdrawUseCase{
		store: store,
	}
}

// Execute debits an account and tracks the amount against the daily
// withdrawal ceiling.
//
// The fetch before the update is advisory: it lets an over-limit request be
// rejected early with a precise error and no store write. Correctness does
// not depend on it: balance and headroom can change between the read and the
// update, so both are re-asserted inside the atomic precondition. A rejection
// there is terminal; the use case never retries.
func (uc *WithdrawUseCase) Execute(ctx context.Context, req entity.MutationRequest) (*entity.Account, error) {
	if req.AccountID == "" {
		return nil, entity.ErrInvalidAccountID
	}

	amount, err := req.ParsedAmount()
	if err != nil {
		return nil, err
	}

	accountID := string(req.AccountID)

	account, err := uc.store.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.DailyAmountWithdrawn.Add(amount).GreaterThan(account.DailyLimit) {
		return nil, entity.ErrDailyLimitExceeded
	}

	updated, err := uc.store.ConditionalUpdate(ctx, accountID, port.BalanceMutation{
		Delta:                    amount.Neg(),
		TrackWithdrawal:          true,
		RequireSufficientBalance: true,
		RequireDailyHeadroom:     true,
	})
	if err != nil {
		var cf *port.ConditionFailedError
		if errors.As(err, &cf) {
			// Collapse the fine-grained cause; it stays visible in
			// logs through the wrapped error.
			return nil, fmt.Errorf("%w (cause: %s)", entity.ErrUpdateRejected, cf.Cause)
		}
		return nil, err
	}

	return updated, nil
}
