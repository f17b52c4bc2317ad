package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
)

// BalanceMutation describes one atomic conditional update. Delta is signed:
// positive for deposits, negative for withdrawals. The update never creates a
// record, so a missing account is always a condition failure.
type BalanceMutation struct {
	// Delta is applied to current_balance.
	Delta decimal.Decimal
	// TrackWithdrawal adds the magnitude of Delta to daily_amount_withdrawn.
	TrackWithdrawal bool
	// RequireSufficientBalance asserts current_balance + Delta >= 0 as part
	// of the atomic precondition.
	RequireSufficientBalance bool
	// RequireDailyHeadroom asserts the updated daily_amount_withdrawn does
	// not exceed daily_limit as part of the atomic precondition.
	RequireDailyHeadroom bool
}

// RejectionCause is the fine-grained reason a conditional update was refused.
// It is kept internal for observability; the service layer collapses it
// before anything reaches a caller.
type RejectionCause string

const (
	CauseUnknown           RejectionCause = "unknown"
	CauseAccountMissing    RejectionCause = "account_missing"
	CauseInsufficientFunds RejectionCause = "insufficient_funds"
	CauseDailyLimit        RejectionCause = "daily_limit_exceeded"
)

// ConditionFailedError signals that the precondition did not hold at commit
// time. No mutation took place.
type ConditionFailedError struct {
	Cause RejectionCause
}

func (e *ConditionFailedError) Error() string {
	return "conditional update rejected: " + string(e.Cause)
}

// AccountStore is the port for the durable account record store.
// Implementations must be safe for concurrent use; ConditionalUpdate must
// check the precondition and apply the mutation as a single atomic operation,
// since it is the only thing standing between two concurrent withdrawals and
// a negative balance.
type AccountStore interface {
	Get(ctx context.Context, accountID string) (*entity.Account, error)
	ConditionalUpdate(ctx context.Context, accountID string, m BalanceMutation) (*entity.Account, error)
}
