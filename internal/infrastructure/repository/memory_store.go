package repository

import (
	"context"
	"sync"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/domain/port"
	"github.com/chapunchi/ledger-service/internal/infrastructure/logger"
)

// MemoryStore implements the AccountStore port in process memory. The mutex
// makes every conditional update atomic with its precondition check, which is
// what the port contract demands. Used for local runs and tests; accounts
// come in through Seed since creation is out of band.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
	logger   logger.Logger
}

// NewMemoryStore creates an empty in-memory account store
func NewMemoryStore(log logger.Logger) *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*entity.Account),
		logger:   log.WithComponent("memory_store"),
	}
}

// Seed inserts or replaces an account record
func (s *MemoryStore) Seed(account entity.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := account
	s.accounts[account.AccountID] = &copied
}

// Get returns a copy of the stored record, or entity.ErrAccountNotFound.
func (s *MemoryStore) Get(ctx context.Context, accountID string) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, entity.ErrAccountNotFound
	}

	copied := *account
	return &copied, nil
}

// ConditionalUpdate applies the mutation under the store lock. On a failed
// precondition nothing changes and the rejection carries its precise cause.
func (s *MemoryStore) ConditionalUpdate(ctx context.Context, accountID string, m port.BalanceMutation) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, &port.ConditionFailedError{Cause: port.CauseAccountMissing}
	}

	newBalance := account.CurrentBalance.Add(m.Delta)
	if m.RequireSufficientBalance && newBalance.IsNegative() {
		s.logger.LogInfo(ctx, "conditional update rejected",
			"account_id", accountID,
			"cause", string(port.CauseInsufficientFunds))
		return nil, &port.ConditionFailedError{Cause: port.CauseInsufficientFunds}
	}

	newWithdrawn := account.DailyAmountWithdrawn
	if m.TrackWithdrawal {
		newWithdrawn = newWithdrawn.Sub(m.Delta)
	}
	if m.RequireDailyHeadroom && newWithdrawn.GreaterThan(account.DailyLimit) {
		s.logger.LogInfo(ctx, "conditional update rejected",
			"account_id", accountID,
			"cause", string(port.CauseDailyLimit))
		return nil, &port.ConditionFailedError{Cause: port.CauseDailyLimit}
	}

	account.CurrentBalance = newBalance
	account.DailyAmountWithdrawn = newWithdrawn

	s.logger.LogInfo(ctx, "balance updated",
		"account_id", accountID,
		"delta", m.Delta.String(),
		"new_balance", newBalance.String())

	copied := *account
	return &copied, nil
}
