package model

// Stage value objects for one authentication run. Each one is produced by
// scraping exactly one HTML response and is consumed by exactly the next
// request in the chain. They are never persisted and never reused across
// runs: the anti-forgery tokens they carry are single-use on the server side.

// AuthorizeForm holds the OAuth authorize parameters scraped from the persona
// domain's entry page. The bridge never invents these values; the platform
// generates them (including the PKCE challenge and nonce) and the bridge
// replays them verbatim against the identity domain.
type AuthorizeForm struct {
	ClientID            string
	RedirectURI         string
	ResponseType        string
	Scope               string
	CodeChallenge       string
	CodeChallengeMethod string
	ResponseMode        string
	Nonce               string
	State               string
}

// EmptyLoginForm holds the server-generated fields of the login page.
type EmptyLoginForm struct {
	ReturnURL         string
	VerificationToken string
}

// FilledLoginForm is an EmptyLoginForm completed with account credentials
// and the fixed login settings.
type FilledLoginForm struct {
	EmptyLoginForm

	Username      string
	Password      string
	TenantName    string
	CountryCode   string
	AuthMethod    string
	RememberLogin bool
}

// Fixed values the platform's login form expects.
const (
	loginTenantName = "dodopizza"
	loginAuthMethod = "local"
)

// Fill completes the login form with the account's plaintext credentials.
func (f EmptyLoginForm) Fill(login, password string, cfg LoginConfig) FilledLoginForm {
	return FilledLoginForm{
		EmptyLoginForm: f,

		Username:      login,
		Password:      password,
		TenantName:    loginTenantName,
		CountryCode:   cfg.CountryCode,
		AuthMethod:    loginAuthMethod,
		RememberLogin: cfg.RememberLogin,
	}
}

// CallbackForm holds the authorization-code fields scraped from the identity
// domain's redirect page, consumed by the persona domain's signin-oidc
// endpoint.
type CallbackForm struct {
	Code         string
	Scope        string
	State        string
	SessionState string
}

// SelectDepartmentForm carries the anti-forgery token of the office-manager
// department-selection page.
type SelectDepartmentForm struct {
	VerificationToken string
}

// SelectRoleForm carries the anti-forgery token of the office-manager
// role-selection page.
type SelectRoleForm struct {
	VerificationToken string
}

// LoginConfig is the ambient, process-wide login configuration passed
// explicitly into the authenticator instead of read from globals.
type LoginConfig struct {
	CountryCode   string
	RememberLogin bool
}
