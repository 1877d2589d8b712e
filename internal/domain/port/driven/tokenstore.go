package driven

import (
	"context"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
)

// TokenStore defines the driven port for the machine-to-machine API token
// pairs. Tokens are plaintext at the domain boundary and encrypted at rest.
type TokenStore interface {
	// Get retrieves the decrypted token pair for an account.
	// Returns (nil, nil) when the account has no stored pair.
	Get(ctx context.Context, accountName string) (*model.APICredentials, error)

	// Replace stores a new token pair for the account in one atomic upsert.
	// Refresh tokens are single-use, so a crash mid-refresh must leave
	// either the complete old pair or the complete new pair, never one
	// token from each.
	Replace(ctx context.Context, creds model.APICredentials) error

	// ListAccounts returns the names of all accounts holding a token pair.
	ListAccounts(ctx context.Context) ([]string, error)
}
