package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
)

// In-memory port fakes for orchestration tests.

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]model.Account
}

func newFakeAccountStore(accounts ...model.Account) *fakeAccountStore {
	store := &fakeAccountStore{accounts: make(map[string]model.Account)}
	for _, account := range accounts {
		store.accounts[account.Name] = account
	}
	return store
}

func (s *fakeAccountStore) GetByName(_ context.Context, name string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[name]
	if !ok {
		return nil, driven.ErrAccountNotFound
	}
	return &account, nil
}

func (s *fakeAccountStore) Add(_ context.Context, account model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.Name] = account
	return nil
}

type sessionKey struct {
	account string
	scope   uuid.UUID
}

type fakeSessionStore struct {
	mu      sync.Mutex
	targets []model.SessionTarget
	stored  map[sessionKey]model.SessionCredentials
	upserts int
}

func newFakeSessionStore(targets ...model.SessionTarget) *fakeSessionStore {
	return &fakeSessionStore{
		targets: targets,
		stored:  make(map[sessionKey]model.SessionCredentials),
	}
}

func (s *fakeSessionStore) Upsert(_ context.Context, creds model.SessionCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored[sessionKey{creds.AccountName, creds.ScopeID}] = creds
	s.upserts++
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, accountName string, scopeID uuid.UUID) (*model.SessionCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, ok := s.stored[sessionKey{accountName, scopeID}]
	if !ok {
		return nil, nil
	}
	return &creds, nil
}

func (s *fakeSessionStore) ListTargets(_ context.Context) ([]model.SessionTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.SessionTarget(nil), s.targets...), nil
}

func (s *fakeSessionStore) AddTarget(_ context.Context, target model.SessionTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets = append(s.targets, target)
	return nil
}

type fakeTokenStore struct {
	mu       sync.Mutex
	pairs    map[string]model.APICredentials
	replaces int
}

func newFakeTokenStore(pairs ...model.APICredentials) *fakeTokenStore {
	store := &fakeTokenStore{pairs: make(map[string]model.APICredentials)}
	for _, pair := range pairs {
		store.pairs[pair.AccountName] = pair
	}
	return store
}

func (s *fakeTokenStore) Get(_ context.Context, accountName string) (*model.APICredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.pairs[accountName]
	if !ok {
		return nil, nil
	}
	return &pair, nil
}

func (s *fakeTokenStore) Replace(_ context.Context, creds model.APICredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[creds.AccountName] = creds
	s.replaces++
	return nil
}

func (s *fakeTokenStore) ListAccounts(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.pairs))
	for name := range s.pairs {
		names = append(names, name)
	}
	return names, nil
}

// fakeGrant answers refresh grants with a canned function.
type fakeGrant struct {
	refresh func(refreshToken string) (model.TokenPair, error)
}

func (g *fakeGrant) Refresh(_ context.Context, refreshToken string) (model.TokenPair, error) {
	return g.refresh(refreshToken)
}

// stubFactory builds in-memory flow clients with no HTTP underneath. The
// stub identity client fails while failures remains positive, which drives
// the retry-policy tests, and tracks how many logins for the same username
// overlap in time, which drives the serialization test.
type stubFactory struct {
	mu        sync.Mutex
	failures  map[string]int
	attempts  map[string]int
	active    map[string]int
	maxActive map[string]int
	failWith  error
}

func newStubFactory() *stubFactory {
	return &stubFactory{
		failures:  make(map[string]int),
		attempts:  make(map[string]int),
		active:    make(map[string]int),
		maxActive: make(map[string]int),
	}
}

func (f *stubFactory) NewRun(persona model.Persona) (driven.IdentityClient, driven.PersonaClient, func(), error) {
	if !persona.Valid() {
		return nil, nil, nil, fmt.Errorf("unknown persona %q", persona)
	}
	return &stubIdentityClient{factory: f}, &stubPersonaClient{}, func() {}, nil
}

func (f *stubFactory) attemptLogin(username string) error {
	f.mu.Lock()
	f.attempts[username]++
	f.active[username]++
	if f.active[username] > f.maxActive[username] {
		f.maxActive[username] = f.active[username]
	}
	fail := f.failures[username] > 0
	if fail {
		f.failures[username]--
	}
	f.mu.Unlock()

	// Hold the stage open long enough for overlapping runs to be observed.
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.active[username]--
	f.mu.Unlock()

	if fail {
		if f.failWith != nil {
			return f.failWith
		}
		return fmt.Errorf("login gateway timeout")
	}
	return nil
}

type stubIdentityClient struct {
	factory *stubFactory
}

func (c *stubIdentityClient) SubmitAuthorize(context.Context, model.AuthorizeForm) (string, error) {
	return loginPage("tok1"), nil
}

func (c *stubIdentityClient) SubmitLogin(_ context.Context, form model.FilledLoginForm) (string, error) {
	if err := c.factory.attemptLogin(form.Username); err != nil {
		return "", err
	}
	return callbackPage("xyz", "s1", "ss1"), nil
}

type stubPersonaClient struct{}

func (c *stubPersonaClient) EnterDomain(context.Context) (string, error) {
	return entryPage("state-value"), nil
}

func (c *stubPersonaClient) CompleteCallback(context.Context, model.CallbackForm) (string, error) {
	return scopePage("tok2"), nil
}

func (c *stubPersonaClient) SelectScope(_ context.Context, scopeID uuid.UUID, _ string) (uuid.UUID, error) {
	return scopeID, nil
}

func (c *stubPersonaClient) CookieMap() map[string]string {
	return map[string]string{"session": "stub-cookie"}
}
