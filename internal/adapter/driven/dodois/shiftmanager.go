package dodois

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PersonaClient = (*ShiftManagerClient)(nil)

// setRoleRequest is the body of the shift-manager SetRole call. The
// department id is the unit UUID without dashes.
type setRoleRequest struct {
	DepartmentID string `json:"departmentId"`
	Role         string `json:"role"`
}

// ShiftManagerClient talks to the shift-manager domain. Unlike the
// office-manager flow, its entry point is a dedicated OIDC path and scope
// narrowing is a JSON role assignment; both the callback and the role call
// are sent with the identity-domain cookies attached.
type ShiftManagerClient struct {
	doer *doer
	// identityCookies snapshots the identity-domain jar at call time.
	identityCookies func() []*http.Cookie
}

// NewShiftManagerClient creates a shift-manager domain client for one run.
// identityCookies must come from the same run's identity client.
func NewShiftManagerClient(baseURL string, timeout time.Duration, identityCookies func() []*http.Cookie) (*ShiftManagerClient, error) {
	d, err := newDoer(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &ShiftManagerClient{doer: d, identityCookies: identityCookies}, nil
}

// EnterDomain opens the dedicated OIDC entry path, which renders the
// authorize form.
func (c *ShiftManagerClient) EnterDomain(ctx context.Context) (string, error) {
	return c.doer.get(ctx, "/Infrastructure/Authenticate/Oidc")
}

// CompleteCallback posts the authorization-code fields with the
// identity-domain cookies attached and returns the role page.
func (c *ShiftManagerClient) CompleteCallback(ctx context.Context, form model.CallbackForm) (string, error) {
	return c.doer.postForm(ctx, "/signin-oidc", url.Values{
		"code":          {form.Code},
		"scope":         {form.Scope},
		"state":         {form.State},
		"session_state": {form.SessionState},
	}, c.identityCookies())
}

// SelectScope assigns the shift-manager role for one operating unit. The
// role call needs nothing from the page returned by CompleteCallback, so
// scopePage is unused in this variant.
func (c *ShiftManagerClient) SelectScope(ctx context.Context, scopeID uuid.UUID, scopePage string) (uuid.UUID, error) {
	_ = scopePage

	response, err := c.doer.postJSON(ctx, "/Infrastructure/Authenticate/SetRole", setRoleRequest{
		DepartmentID: hex.EncodeToString(scopeID[:]),
		Role:         model.RoleShiftManagerName,
	}, c.identityCookies())
	if err != nil {
		return uuid.Nil, err
	}

	return achievedUnit(response, scopeID), nil
}

// achievedUnit reads the unit the server reports as assigned. The response
// body is empty on most deployments; when it echoes the request shape, the
// echoed department wins.
func achievedUnit(response string, submitted uuid.UUID) uuid.UUID {
	var echo setRoleRequest
	if err := json.Unmarshal([]byte(response), &echo); err != nil || echo.DepartmentID == "" {
		return submitted
	}
	echoed, err := uuid.Parse(echo.DepartmentID)
	if err != nil {
		return submitted
	}
	return echoed
}

// CookieMap snapshots the shift-manager domain jar.
func (c *ShiftManagerClient) CookieMap() map[string]string {
	return c.doer.cookieMap()
}

// Close releases the client's connections.
func (c *ShiftManagerClient) Close() {
	c.doer.close()
}
