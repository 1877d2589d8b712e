package application

import "fmt"

// Markup fixtures approximating the pages the platform serves at each stage
// of a login run.

func entryPage(state string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
  <form method="post" action="https://auth.example/connect/authorize">
    <input type="hidden" name="client_id" value="officemanager" />
    <input type="hidden" name="redirect_uri" value="https://office.example/signin-oidc" />
    <input type="hidden" name="response_type" value="code" />
    <input type="hidden" name="scope" value="openid profile" />
    <input type="hidden" name="code_challenge" value="challenge-value" />
    <input type="hidden" name="code_challenge_method" value="S256" />
    <input type="hidden" name="response_mode" value="form_post" />
    <input type="hidden" name="nonce" value="nonce-value" />
    <input type="hidden" name="state" value="%s" />
  </form>
</body>
</html>`, state)
}

func loginPage(token string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
  <form method="post">
    <input type="hidden" name="ReturnUrl" value="/connect/authorize/callback" />
    <input name="Username" />
    <input name="Password" type="password" />
    <input type="hidden" name="__RequestVerificationToken" value="%s" />
  </form>
</body>
</html>`, token)
}

func callbackPage(code, state, sessionState string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body onload="document.forms[0].submit()">
  <form method="post" action="https://office.example/signin-oidc">
    <input type="hidden" name="code" value="%s" />
    <input type="hidden" name="scope" value="openid profile" />
    <input type="hidden" name="state" value="%s" />
    <input type="hidden" name="session_state" value="%s" />
  </form>
</body>
</html>`, code, state, sessionState)
}

func scopePage(token string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
  <form method="post" action="/Infrastructure/Authenticate/SelectDepartment">
    <input type="hidden" name="__RequestVerificationToken" value="%s" />
  </form>
</body>
</html>`, token)
}

func departmentEcho(id string) string {
	return fmt.Sprintf(`<html><body><input type="hidden" name="uuid" value="%s" /></body></html>`, id)
}
