package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/domain/port"
	"github.com/chapunchi/ledger-service/internal/infrastructure/logger"
)

const accountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	account_id             TEXT PRIMARY KEY,
	current_balance        NUMERIC NOT NULL DEFAULT 0,
	daily_limit            NUMERIC NOT NULL DEFAULT 0,
	daily_amount_withdrawn NUMERIC NOT NULL DEFAULT 0
)`

// PostgresStore implements the AccountStore port on postgres. The precondition
// and the mutation travel in one UPDATE statement, never as a read-modify-write
// across round trips. Every operation carries a bounded deadline; hitting it
// surfaces as a store error, not a logical rejection.
type PostgresStore struct {
	db        *sql.DB
	opTimeout time.Duration
	logger    logger.Logger
}

// OpenPostgresStore connects and verifies connectivity. The ping is retried
// with exponential backoff at bootstrap only; request-path operations are
// never retried.
func OpenPostgresStore(ctx context.Context, dsn string, opTimeout time.Duration, log logger.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(ping, policy); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{
		db:        db,
		opTimeout: opTimeout,
		logger:    log.WithComponent("postgres_store"),
	}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, accountsSchema); err != nil {
		return fmt.Errorf("ensure accounts schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Get returns the stored record, or entity.ErrAccountNotFound.
func (s *PostgresStore) Get(ctx context.Context, accountID string) (*entity.Account, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	const query = `
SELECT current_balance::text, daily_limit::text, daily_amount_withdrawn::text
FROM accounts
WHERE account_id = $1`

	return s.scanAccount(s.db.QueryRowContext(ctx, query, accountID), accountID)
}

// ConditionalUpdate applies the mutation as a single UPDATE whose WHERE clause
// carries the full precondition. Zero rows updated means the precondition did
// not hold; a best-effort diagnostic read classifies the cause for logging.
// The classification is advisory, only the rejection itself is authoritative.
func (s *PostgresStore) ConditionalUpdate(ctx context.Context, accountID string, m port.BalanceMutation) (*entity.Account, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var b strings.Builder
	b.WriteString("UPDATE accounts SET current_balance = current_balance + $2::numeric")
	if m.TrackWithdrawal {
		// Delta is negative for withdrawals; subtracting it adds the
		// withdrawn magnitude.
		b.WriteString(", daily_amount_withdrawn = daily_amount_withdrawn - $2::numeric")
	}
	b.WriteString(" WHERE account_id = $1")
	if m.RequireSufficientBalance {
		b.WriteString(" AND current_balance + $2::numeric >= 0")
	}
	if m.RequireDailyHeadroom {
		b.WriteString(" AND daily_amount_withdrawn - $2::numeric <= daily_limit")
	}
	b.WriteString(" RETURNING current_balance::text, daily_limit::text, daily_amount_withdrawn::text")

	account, err := s.scanAccount(s.db.QueryRowContext(ctx, b.String(), accountID, m.Delta.String()), accountID)
	if err == nil {
		s.logger.LogInfo(ctx, "balance updated",
			"account_id", accountID,
			"delta", m.Delta.String(),
			"new_balance", account.CurrentBalance.String())
		return account, nil
	}
	if errors.Is(err, entity.ErrAccountNotFound) {
		cause := s.classifyRejection(ctx, accountID, m)
		s.logger.LogInfo(ctx, "conditional update rejected",
			"account_id", accountID,
			"cause", string(cause))
		return nil, &port.ConditionFailedError{Cause: cause}
	}
	return nil, err
}

// classifyRejection re-reads the row after a failed update to name the cause
// in logs. The row can have changed since the rejection, so the answer is
// best effort and CauseUnknown is an acceptable outcome.
func (s *PostgresStore) classifyRejection(ctx context.Context, accountID string, m port.BalanceMutation) port.RejectionCause {
	account, err := s.Get(ctx, accountID)
	if errors.Is(err, entity.ErrAccountNotFound) {
		return port.CauseAccountMissing
	}
	if err != nil {
		return port.CauseUnknown
	}
	if m.RequireSufficientBalance && account.CurrentBalance.Add(m.Delta).IsNegative() {
		return port.CauseInsufficientFunds
	}
	if m.RequireDailyHeadroom && account.DailyAmountWithdrawn.Sub(m.Delta).GreaterThan(account.DailyLimit) {
		return port.CauseDailyLimit
	}
	return port.CauseUnknown
}

func (s *PostgresStore) scanAccount(row *sql.Row, accountID string) (*entity.Account, error) {
	var balance, limit, withdrawn string
	if err := row.Scan(&balance, &limit, &withdrawn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account %s: %w", accountID, err)
	}

	account := &entity.Account{AccountID: accountID}
	var err error
	if account.CurrentBalance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("parse current_balance for %s: %w", accountID, err)
	}
	if account.DailyLimit, err = decimal.NewFromString(limit); err != nil {
		return nil, fmt.Errorf("parse daily_limit for %s: %w", accountID, err)
	}
	if account.DailyAmountWithdrawn, err = decimal.NewFromString(withdrawn); err != nil {
		return nil, fmt.Errorf("parse daily_amount_withdrawn for %s: %w", accountID, err)
	}

	return account, nil
}
