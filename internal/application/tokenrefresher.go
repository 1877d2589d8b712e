package application

import (
	"context"
	"fmt"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
)

// TokenRefresher rotates one account's machine-to-machine token pair through
// the refresh grant. The stored pair is replaced only after the grant
// succeeds; a failed grant leaves the previous pair untouched so a later
// attempt can retry with it.
type TokenRefresher struct {
	grant  driven.TokenGrantClient
	tokens driven.TokenStore
}

// NewTokenRefresher creates a TokenRefresher.
func NewTokenRefresher(grant driven.TokenGrantClient, tokens driven.TokenStore) *TokenRefresher {
	return &TokenRefresher{
		grant:  grant,
		tokens: tokens,
	}
}

// RefreshAccount exchanges the account's stored refresh token for a new pair
// and persists it atomically. Accounts with no stored pair are skipped
// without error.
func (r *TokenRefresher) RefreshAccount(ctx context.Context, accountName string) error {
	stored, err := r.tokens.Get(ctx, accountName)
	if err != nil {
		return fmt.Errorf("load token pair: %w", err)
	}
	if stored == nil {
		return nil
	}

	pair, err := r.grant.Refresh(ctx, stored.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh grant: %w", err)
	}

	err = r.tokens.Replace(ctx, model.APICredentials{
		AccountName:  accountName,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		DepartmentID: stored.DepartmentID,
	})
	if err != nil {
		return fmt.Errorf("store token pair: %w", err)
	}
	return nil
}
