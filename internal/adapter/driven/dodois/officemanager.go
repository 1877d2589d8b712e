package dodois

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/htmlform"
)

// Compile-time interface satisfaction check.
var _ driven.PersonaClient = (*OfficeManagerClient)(nil)

// OfficeManagerClient talks to the office-manager domain. Scope narrowing
// selects a department via a form-encoded anti-forgery-protected request.
type OfficeManagerClient struct {
	doer *doer
}

// NewOfficeManagerClient creates an office-manager domain client for one run.
func NewOfficeManagerClient(baseURL string, timeout time.Duration) (*OfficeManagerClient, error) {
	d, err := newDoer(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &OfficeManagerClient{doer: d}, nil
}

// EnterDomain opens the domain root, which renders the authorize form.
func (c *OfficeManagerClient) EnterDomain(ctx context.Context) (string, error) {
	return c.doer.get(ctx, "/")
}

// CompleteCallback posts the authorization-code fields and returns the
// department-selection page.
func (c *OfficeManagerClient) CompleteCallback(ctx context.Context, form model.CallbackForm) (string, error) {
	return c.doer.postForm(ctx, "/signin-oidc", url.Values{
		"code":          {form.Code},
		"scope":         {form.Scope},
		"state":         {form.State},
		"session_state": {form.SessionState},
	}, nil)
}

// SelectScope narrows the session to one department. The anti-forgery token
// is scraped from the department-selection page; the achieved scope is read
// back from the server's response where it echoes one.
func (c *OfficeManagerClient) SelectScope(ctx context.Context, scopeID uuid.UUID, scopePage string) (uuid.UUID, error) {
	form, err := htmlform.ParseSelectDepartmentForm(scopePage)
	if err != nil {
		return uuid.Nil, err
	}

	response, err := c.doer.postForm(ctx, "/Infrastructure/Authenticate/SelectDepartment", url.Values{
		"uuid":                       {scopeID.String()},
		"__RequestVerificationToken": {form.VerificationToken},
	}, nil)
	if err != nil {
		return uuid.Nil, err
	}

	return achievedScope(response, scopeID), nil
}

// achievedScope reads the department the server reports as selected.
// The final page is not guaranteed to echo it; when it doesn't, the
// submitted scope is the only observable answer.
func achievedScope(response string, submitted uuid.UUID) uuid.UUID {
	fields, err := htmlform.ExtractFields(response, "uuid")
	if err != nil {
		return submitted
	}
	echoed, err := uuid.Parse(fields["uuid"])
	if err != nil {
		return submitted
	}
	return echoed
}

// SelectRole picks an operator role on the role-selection page. The
// department flow does not need it, but the domain serves the endpoint and
// some accounts land on it first.
func (c *OfficeManagerClient) SelectRole(ctx context.Context, roleID model.RoleID, rolePage string) (string, error) {
	form, err := htmlform.ParseSelectRoleForm(rolePage)
	if err != nil {
		return "", err
	}

	return c.doer.postForm(ctx, "/Infrastructure/Authenticate/SelectRole", url.Values{
		"roleId":                     {strconv.Itoa(int(roleID))},
		"__RequestVerificationToken": {form.VerificationToken},
	}, nil)
}

// CookieMap snapshots the office-manager domain jar.
func (c *OfficeManagerClient) CookieMap() map[string]string {
	return c.doer.cookieMap()
}

// Close releases the client's connections.
func (c *OfficeManagerClient) Close() {
	c.doer.close()
}
