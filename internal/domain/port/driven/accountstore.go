package driven

import (
	"context"
	"errors"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
)

// ErrAccountNotFound is returned when no account exists under the given name.
var ErrAccountNotFound = errors.New("account not found")

// AccountStore defines the driven port for platform account persistence.
// Credentials are plaintext at the domain boundary; the adapter encrypts
// them at rest and surfaces vault.ErrDecrypt for unreadable ciphertext.
type AccountStore interface {
	// GetByName retrieves one account with decrypted credentials.
	// Returns ErrAccountNotFound if the name is unknown.
	GetByName(ctx context.Context, name string) (*model.Account, error)

	// Add stores a new account. The name must be unique.
	Add(ctx context.Context, account model.Account) error
}
