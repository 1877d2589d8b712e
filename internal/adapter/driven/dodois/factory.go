package dodois

import (
	"fmt"
	"time"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
)

// Factory builds the pair of scoped HTTP clients a single authentication
// run owns. Every run gets fresh cookie jars: session state from a previous
// or half-completed run is not safely reusable because the server-side
// anti-forgery tokens are single-use.
type Factory struct {
	authBaseURL          string
	officeManagerBaseURL string
	shiftManagerBaseURL  string
	timeout              time.Duration
}

// NewFactory creates a run factory for the configured platform domains.
func NewFactory(authBaseURL, officeManagerBaseURL, shiftManagerBaseURL string, timeout time.Duration) *Factory {
	return &Factory{
		authBaseURL:          authBaseURL,
		officeManagerBaseURL: officeManagerBaseURL,
		shiftManagerBaseURL:  shiftManagerBaseURL,
		timeout:              timeout,
	}
}

// NewRun creates the identity-domain and persona-domain clients for one run.
// The returned release func closes both clients' connections and must be
// called on every exit path.
func (f *Factory) NewRun(persona model.Persona) (driven.IdentityClient, driven.PersonaClient, func(), error) {
	identity, err := NewIdentityClient(f.authBaseURL, persona, f.timeout)
	if err != nil {
		return nil, nil, nil, err
	}

	switch persona {
	case model.PersonaOfficeManager:
		officeManager, err := NewOfficeManagerClient(f.officeManagerBaseURL, f.timeout)
		if err != nil {
			identity.Close()
			return nil, nil, nil, err
		}
		release := func() {
			identity.Close()
			officeManager.Close()
		}
		return identity, officeManager, release, nil

	case model.PersonaShiftManager:
		shiftManager, err := NewShiftManagerClient(f.shiftManagerBaseURL, f.timeout, identity.Cookies)
		if err != nil {
			identity.Close()
			return nil, nil, nil, err
		}
		release := func() {
			identity.Close()
			shiftManager.Close()
		}
		return identity, shiftManager, release, nil

	default:
		identity.Close()
		return nil, nil, nil, fmt.Errorf("unknown persona %q", persona)
	}
}
