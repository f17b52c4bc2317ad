package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
	"github.com/chapunchi/ledger-service/internal/domain/port"
	"github.com/chapunchi/ledger-service/internal/infrastructure/logger"
)

// BasicVerifier implements the Authenticator port against a single
// username/password pair resolved once from a CredentialSource. The pair is
// held in an immutable value swapped atomically on Reload, so rotation needs
// a reload, not a restart.
//
// The configured password may be plaintext or a bcrypt hash; hashes are
// recognized by their "$2" prefix.
type BasicVerifier struct {
	source port.CredentialSource
	creds  atomic.Value // entity.Credentials
	logger logger.Logger
}

// NewBasicVerifier resolves credentials from the source and fails if they
// cannot be fetched. The service must not start without a caller identity
// to check against.
func NewBasicVerifier(ctx context.Context, source port.CredentialSource, log logger.Logger) (*BasicVerifier, error) {
	v := &BasicVerifier{
		source: source,
		logger: log.WithComponent("basic_verifier"),
	}
	if err := v.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return v, nil
}

// Reload fetches fresh credentials and swaps them in
func (v *BasicVerifier) Reload(ctx context.Context) error {
	creds, err := v.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch credentials: %w", err)
	}
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("credential source returned incomplete credentials")
	}
	v.creds.Store(creds)
	v.logger.LogInfo(ctx, "credentials loaded", "username", creds.Username)
	return nil
}

// Verify checks the presented pair against the cached credentials in constant
// time. Mismatches all collapse into entity.ErrUnauthorized.
func (v *BasicVerifier) Verify(ctx context.Context, username, password string) error {
	creds, ok := v.creds.Load().(entity.Credentials)
	if !ok {
		return entity.ErrUnauthorized
	}

	if !secureEqual(username, creds.Username) {
		return entity.ErrUnauthorized
	}
	if !passwordMatches(password, creds.Password) {
		return entity.ErrUnauthorized
	}
	return nil
}

func passwordMatches(presented, configured string) bool {
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(presented)) == nil
	}
	return secureEqual(presented, configured)
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
