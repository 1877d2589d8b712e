package dodois

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.IdentityClient = (*IdentityClient)(nil)

// loginRoute captures how a persona's login form is submitted. The platform
// has shipped two revisions of the login page and the personas target
// different ones: the office-manager flow posts the tenant-qualified form,
// the shift-manager flow posts the plain password form.
type loginRoute struct {
	path          string
	usernameField string
	withTenant    bool
}

var loginRoutes = map[model.Persona]loginRoute{
	model.PersonaOfficeManager: {path: "/account/login", usernameField: "Username", withTenant: true},
	model.PersonaShiftManager:  {path: "/login/password", usernameField: "Login", withTenant: false},
}

// IdentityClient talks to the shared identity domain. Its cookie jar lives
// for one run and accumulates provider-domain cookies across both calls;
// those cookies are never persisted.
type IdentityClient struct {
	doer  *doer
	route loginRoute
}

// NewIdentityClient creates an identity-domain client for one run of the
// given persona's flow.
func NewIdentityClient(baseURL string, persona model.Persona, timeout time.Duration) (*IdentityClient, error) {
	route, ok := loginRoutes[persona]
	if !ok {
		return nil, fmt.Errorf("unknown persona %q", persona)
	}

	d, err := newDoer(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &IdentityClient{doer: d, route: route}, nil
}

// SubmitAuthorize replays the scraped authorize parameters and returns the
// rendered login page.
func (c *IdentityClient) SubmitAuthorize(ctx context.Context, form model.AuthorizeForm) (string, error) {
	return c.doer.postForm(ctx, "/connect/authorize", url.Values{
		"client_id":             {form.ClientID},
		"redirect_uri":          {form.RedirectURI},
		"response_type":         {form.ResponseType},
		"scope":                 {form.Scope},
		"code_challenge":        {form.CodeChallenge},
		"code_challenge_method": {form.CodeChallengeMethod},
		"response_mode":         {form.ResponseMode},
		"nonce":                 {form.Nonce},
		"state":                 {form.State},
	}, nil)
}

// SubmitLogin posts the filled login form and returns the redirect page
// carrying the callback fields.
func (c *IdentityClient) SubmitLogin(ctx context.Context, form model.FilledLoginForm) (string, error) {
	values := url.Values{
		"ReturnUrl":                  {form.ReturnURL},
		c.route.usernameField:        {form.Username},
		"Password":                   {form.Password},
		"authMethod":                 {form.AuthMethod},
		"__RequestVerificationToken": {form.VerificationToken},
		"RememberLogin":              {strconv.FormatBool(form.RememberLogin)},
	}
	if c.route.withTenant {
		values.Set("TenantName", form.TenantName)
		values.Set("CountryCode", form.CountryCode)
	}
	return c.doer.postForm(ctx, c.route.path, values, nil)
}

// Cookies snapshots the identity-domain jar. The shift-manager persona
// client forwards these on its own requests.
func (c *IdentityClient) Cookies() []*http.Cookie {
	return c.doer.cookies()
}

// Close releases the client's connections.
func (c *IdentityClient) Close() {
	c.doer.close()
}
