package port

import (
	"context"

	"github.com/chapunchi/ledger-service/internal/domain/entity"
)

// CredentialSource resolves the service credentials from an external secret
// store. It is consulted at startup and on explicit reloads, never per
// request.
type CredentialSource interface {
	Fetch(ctx context.Context) (entity.Credentials, error)
}

// Authenticator verifies a caller's identity on every request against
// credentials loaded once from a CredentialSource. Reload swaps in fresh
// credentials for rotation without a restart.
type Authenticator interface {
	Verify(ctx context.Context, username, password string) error
	Reload(ctx context.Context) error
}
