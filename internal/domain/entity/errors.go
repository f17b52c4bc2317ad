package entity

import "errors"

var (
	ErrMalformedPayload = errors.New("invalid JSON payload")
	ErrEmptyRequest     = errors.New("empty request body")
	ErrInvalidAccountID = errors.New("invalid account_id")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAccountNotFound  = errors.New("account not found")
	ErrUnauthorized     = errors.New("unauthorized")

	// ErrDailyLimitExceeded is the advisory pre-check rejection; the same
	// condition caught at commit time surfaces as ErrUpdateRejected.
	ErrDailyLimitExceeded = errors.New("daily limit exceeded")

	// ErrUpdateRejected is the collapsed store-level rejection. The store
	// keeps the fine-grained cause for logging, but callers only see this.
	ErrUpdateRejected = errors.New("insufficient balance or account not found or daily limit exceeded")
)
