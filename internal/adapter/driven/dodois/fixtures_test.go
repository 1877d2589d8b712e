package dodois

import "fmt"

// Markup fixtures approximating the pages the platform serves at each stage.

func entryPageFixture() string {
	return `<!DOCTYPE html>
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
    <input type="hidden" name="state" value="state-value" />
  </form>
</body>
</html>`
}

func scopePageFixture(token string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
  <form method="post" action="/Infrastructure/Authenticate/SelectDepartment">
    <input type="hidden" name="__RequestVerificationToken" value="%s" />
  </form>
</body>
</html>`, token)
}

func departmentEchoFixture(id string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
  <input type="hidden" name="uuid" value="%s" />
</body>
</html>`, id)
}
