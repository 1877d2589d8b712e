package driven

import (
	"context"

	"github.com/google/uuid"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
)

// SessionStore defines the driven port for persisting authenticated session
// cookie blobs and the targets the scheduler refreshes them for. Cookie maps
// are plaintext at the domain boundary and encrypted at rest by the adapter.
type SessionStore interface {
	// Upsert stores or replaces the session credentials for the
	// (account, scope) pair. Only the orchestrator writes here, and only
	// after a completed, scope-verified run.
	Upsert(ctx context.Context, creds model.SessionCredentials) error

	// Get retrieves decrypted session credentials for the (account, scope)
	// pair. Returns (nil, nil) when none are stored.
	Get(ctx context.Context, accountName string, scopeID uuid.UUID) (*model.SessionCredentials, error)

	// ListTargets returns every (account, persona, scope) combination that
	// the scheduler should refresh.
	ListTargets(ctx context.Context) ([]model.SessionTarget, error)

	// AddTarget registers a refresh target. The referenced account must exist.
	AddTarget(ctx context.Context, target model.SessionTarget) error
}
