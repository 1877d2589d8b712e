package driven

import (
	"context"

	"github.com/google/uuid"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
)

// IdentityClient defines the driven port for the shared identity domain.
// One implementation instance owns one HTTP client whose cookie jar persists
// across both calls for the duration of a single run; identity-domain cookies
// are never the stored artifact.
type IdentityClient interface {
	// SubmitAuthorize replays the scraped authorize parameters and returns
	// the rendered login page.
	SubmitAuthorize(ctx context.Context, form model.AuthorizeForm) (string, error)

	// SubmitLogin posts credentials plus the login page's anti-forgery
	// token and returns the redirect page whose body carries the callback
	// form fields. Path and field naming are persona-dependent.
	SubmitLogin(ctx context.Context, form model.FilledLoginForm) (string, error)
}

// PersonaClient defines the driven port for a persona's target domain. Both
// persona variants expose the same three-operation shape so the orchestrator
// stays persona-agnostic.
type PersonaClient interface {
	// EnterDomain opens the persona domain's entry page, which renders the
	// authorize form consumed by the identity domain.
	EnterDomain(ctx context.Context) (string, error)

	// CompleteCallback posts the code/state/session_state scraped from the
	// identity domain's redirect body and returns the page carrying the
	// scope-selection step.
	CompleteCallback(ctx context.Context, form model.CallbackForm) (string, error)

	// SelectScope narrows the session to the given organizational scope.
	// scopePage is the HTML returned by CompleteCallback; the variant
	// extracts whatever it needs from it (the office-manager form carries
	// an anti-forgery token, the shift-manager role call does not).
	// The returned UUID is the scope the server reports as selected, or
	// the submitted scope where the response does not echo one.
	SelectScope(ctx context.Context, scopeID uuid.UUID, scopePage string) (uuid.UUID, error)

	// CookieMap snapshots the persona-domain cookie jar. This is the final
	// artifact of a successful run.
	CookieMap() map[string]string
}

// TokenGrantClient defines the driven port for the identity domain's token
// endpoint.
type TokenGrantClient interface {
	// Refresh exchanges a refresh token for a new access/refresh pair.
	// A grant the provider rejects is reported as
	// model.ErrInvalidRefreshToken.
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
}
