package model

import (
	"time"

	"github.com/google/uuid"
)

// Account is a machine-held platform account. Login and Password are
// plaintext at the domain boundary; the storage adapter encrypts them at
// rest. Accounts are created out-of-band and immutable at runtime. One
// account may back several organizational scopes.
type Account struct {
	ID       int64
	Name     string
	Login    string
	Password string
}

// SessionCredentials is the final artifact of one successful authentication
// run: the persona-domain cookie jar, tagged with the account and the scope
// it was narrowed to. ScopeID is a department UUID for the office-manager
// persona and a unit UUID for the shift-manager persona; the stored scope
// always equals the scope the run was requested for.
type SessionCredentials struct {
	AccountName string
	Persona     Persona
	ScopeID     uuid.UUID
	Cookies     map[string]string
	UpdatedAt   time.Time
}

// APICredentials is the machine-to-machine token pair for an account,
// refreshed in place via the refresh-token grant. DepartmentID is optional
// scope metadata carried alongside the pair.
type APICredentials struct {
	AccountName  string
	AccessToken  string
	RefreshToken string
	DepartmentID *uuid.UUID
	UpdatedAt    time.Time
}

// TokenPair is the result of one refresh-token grant.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionTarget is one (account, persona, scope) combination the scheduler
// refreshes. Targets are configuration, created out-of-band.
type SessionTarget struct {
	AccountName string
	Persona     Persona
	ScopeID     uuid.UUID
}
