package entity

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Account is one ledger record. All monetary fields are exact decimals;
// binary floats are never used for balances.
type Account struct {
	AccountID            string
	CurrentBalance       decimal.Decimal
	DailyLimit           decimal.Decimal
	DailyAmountWithdrawn decimal.Decimal
}

// Credentials is the single username/password pair callers authenticate with.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidateAccountID enforces the strict balance-lookup format: a non-empty
// sequence of decimal digits, nothing else. Mutation endpoints are looser and
// accept any non-empty identifier.
func ValidateAccountID(id string) error {
	if id == "" {
		return ErrInvalidAccountID
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ErrInvalidAccountID
		}
	}
	return nil
}

// FlexString accepts a JSON string or a JSON number and keeps its textual
// form. Clients send account ids both quoted and bare.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// MutationRequest is the body of the deposit and withdraw endpoints. Amount is
// kept raw until validation so a non-numeric value surfaces as an invalid
// amount rather than a malformed payload.
type MutationRequest struct {
	AccountID FlexString      `json:"account_id"`
	Amount    json.RawMessage `json:"amount"`
}

// Validate checks field presence in the order the endpoints report errors:
// account id first, amount second.
func (r *MutationRequest) Validate() error {
	if r.AccountID == "" {
		return ErrInvalidAccountID
	}
	if _, err := r.ParsedAmount(); err != nil {
		return err
	}
	return nil
}

// ParsedAmount converts the raw amount to an exact decimal. The amount may
// arrive as a JSON number or a numeric string; anything non-numeric or not
// strictly positive is an invalid amount.
func (r *MutationRequest) ParsedAmount() (decimal.Decimal, error) {
	raw := bytes.TrimSpace(r.Amount)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, ErrInvalidAmount
	}
	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, ErrInvalidAmount
		}
		text = s
	}
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
