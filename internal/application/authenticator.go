// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/htmlform"
)

// RunFactory builds the pair of scoped HTTP clients one authentication run
// owns. The release func closes both clients and is called on every exit
// path, success or failure.
type RunFactory interface {
	NewRun(persona model.Persona) (driven.IdentityClient, driven.PersonaClient, func(), error)
}

// Authenticator performs one full unattended login run for one persona:
// it sequences the identity-domain and persona-domain calls, threading each
// stage's scraped output into the next stage's request, and yields the
// persona-domain cookie jar. It holds no per-run state; a retry is a fresh
// Authenticate call, which starts over with fresh clients because the
// server-side anti-forgery tokens from an aborted run are single-use.
type Authenticator struct {
	factory  RunFactory
	loginCfg model.LoginConfig
}

// NewAuthenticator creates an Authenticator with the fixed login settings.
func NewAuthenticator(factory RunFactory, loginCfg model.LoginConfig) *Authenticator {
	return &Authenticator{
		factory:  factory,
		loginCfg: loginCfg,
	}
}

// Authenticate logs the account into the platform as the given persona,
// narrows the session to scopeID, and returns the persona-domain cookies.
// Identity-domain cookies are discarded with the run's clients.
//
// The stages run in strict order; any scrape or transport failure aborts the
// run at that stage. The cookies are returned only after the achieved scope
// is verified to equal the requested one.
func (a *Authenticator) Authenticate(ctx context.Context, account model.Account, persona model.Persona, scopeID uuid.UUID) (map[string]string, error) {
	identity, personaClient, release, err := a.factory.NewRun(persona)
	if err != nil {
		return nil, fmt.Errorf("create run clients: %w", err)
	}
	defer release()

	entryPage, err := personaClient.EnterDomain(ctx)
	if err != nil {
		return nil, fmt.Errorf("enter persona domain: %w", err)
	}

	// The authorize parameters are the platform's own: scraped from the
	// entry page and replayed verbatim, never invented here.
	authorizeForm, err := htmlform.ParseAuthorizeForm(entryPage)
	if err != nil {
		return nil, fmt.Errorf("parse authorize form: %w", err)
	}

	loginPage, err := identity.SubmitAuthorize(ctx, authorizeForm)
	if err != nil {
		return nil, fmt.Errorf("submit authorize: %w", err)
	}

	emptyLoginForm, err := htmlform.ParseLoginForm(loginPage)
	if err != nil {
		return nil, fmt.Errorf("parse login form: %w", err)
	}

	redirectPage, err := identity.SubmitLogin(ctx, emptyLoginForm.Fill(account.Login, account.Password, a.loginCfg))
	if err != nil {
		return nil, fmt.Errorf("submit login: %w", err)
	}

	callbackForm, err := htmlform.ParseCallbackForm(redirectPage)
	if err != nil {
		return nil, fmt.Errorf("parse callback form: %w", err)
	}

	scopePage, err := personaClient.CompleteCallback(ctx, callbackForm)
	if err != nil {
		return nil, fmt.Errorf("complete callback: %w", err)
	}

	achievedScope, err := personaClient.SelectScope(ctx, scopeID, scopePage)
	if err != nil {
		return nil, fmt.Errorf("select scope: %w", err)
	}

	if achievedScope != scopeID {
		return nil, model.ScopeMismatchError{Requested: scopeID, Achieved: achievedScope}
	}

	return personaClient.CookieMap(), nil
}
