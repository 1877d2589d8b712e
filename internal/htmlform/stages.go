package htmlform

import (
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
)

// Field names as they appear in the platform's markup.
const (
	fieldReturnURL         = "ReturnUrl"
	fieldVerificationToken = "__RequestVerificationToken"
)

// ParseAuthorizeForm scrapes the authorize parameters from the persona
// domain's entry page.
func ParseAuthorizeForm(document string) (model.AuthorizeForm, error) {
	fields, err := ExtractFields(document,
		"client_id",
		"redirect_uri",
		"response_type",
		"scope",
		"code_challenge",
		"code_challenge_method",
		"response_mode",
		"nonce",
		"state",
	)
	if err != nil {
		return model.AuthorizeForm{}, err
	}

	return model.AuthorizeForm{
		ClientID:            fields["client_id"],
		RedirectURI:         fields["redirect_uri"],
		ResponseType:        fields["response_type"],
		Scope:               fields["scope"],
		CodeChallenge:       fields["code_challenge"],
		CodeChallengeMethod: fields["code_challenge_method"],
		ResponseMode:        fields["response_mode"],
		Nonce:               fields["nonce"],
		State:               fields["state"],
	}, nil
}

// ParseLoginForm scrapes the return URL and anti-forgery token from the
// identity domain's login page.
func ParseLoginForm(document string) (model.EmptyLoginForm, error) {
	fields, err := ExtractFields(document, fieldReturnURL, fieldVerificationToken)
	if err != nil {
		return model.EmptyLoginForm{}, err
	}

	return model.EmptyLoginForm{
		ReturnURL:         fields[fieldReturnURL],
		VerificationToken: fields[fieldVerificationToken],
	}, nil
}

// ParseCallbackForm scrapes the authorization-code fields from the identity
// domain's redirect page.
func ParseCallbackForm(document string) (model.CallbackForm, error) {
	fields, err := ExtractFields(document, "code", "scope", "state", "session_state")
	if err != nil {
		return model.CallbackForm{}, err
	}

	return model.CallbackForm{
		Code:         fields["code"],
		Scope:        fields["scope"],
		State:        fields["state"],
		SessionState: fields["session_state"],
	}, nil
}

// ParseSelectDepartmentForm scrapes the anti-forgery token from the
// office-manager department-selection page.
func ParseSelectDepartmentForm(document string) (model.SelectDepartmentForm, error) {
	fields, err := ExtractFields(document, fieldVerificationToken)
	if err != nil {
		return model.SelectDepartmentForm{}, err
	}
	return model.SelectDepartmentForm{VerificationToken: fields[fieldVerificationToken]}, nil
}

// ParseSelectRoleForm scrapes the anti-forgery token from the office-manager
// role-selection page.
func ParseSelectRoleForm(document string) (model.SelectRoleForm, error) {
	fields, err := ExtractFields(document, fieldVerificationToken)
	if err != nil {
		return model.SelectRoleForm{}, err
	}
	return model.SelectRoleForm{VerificationToken: fields[fieldVerificationToken]}, nil
}
