package dodois

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
)

func TestOfficeManagerEnterDomain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		assert.Equal(t, "dodoextbot", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(entryPageFixture()))
	}))
	defer server.Close()

	client, err := NewOfficeManagerClient(server.URL, time.Second)
	require.NoError(t, err)
	defer client.Close()

	page, err := client.EnterDomain(context.Background())
	require.NoError(t, err)
	assert.Contains(t, page, "client_id")
}

func TestOfficeManagerCompleteCallback(t *testing.T) {
	var gotForm map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/signin-oidc", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_, _ = w.Write([]byte(scopePageFixture("tok2")))
	}))
	defer server.Close()

	client, err := NewOfficeManagerClient(server.URL, time.Second)
	require.NoError(t, err)
	defer client.Close()

	page, err := client.CompleteCallback(context.Background(), model.CallbackForm{
		Code:         "xyz",
		Scope:        "openid profile",
		State:        "s1",
		SessionState: "ss1",
	})
	require.NoError(t, err)
	assert.Contains(t, page, "tok2")

	assert.Equal(t, "xyz", gotForm["code"][0])
	assert.Equal(t, "s1", gotForm["state"][0])
	assert.Equal(t, "ss1", gotForm["session_state"][0])
}

func TestOfficeManagerSelectScope(t *testing.T) {
	departmentID := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	t.Run("posts uuid with anti-forgery token", func(t *testing.T) {
		var gotForm map[string][]string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/Infrastructure/Authenticate/SelectDepartment", r.URL.Path)
			require.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			_, _ = w.Write([]byte("dashboard"))
		}))
		defer server.Close()

		client, err := NewOfficeManagerClient(server.URL, time.Second)
		require.NoError(t, err)
		defer client.Close()

		achieved, err := client.SelectScope(context.Background(), departmentID, scopePageFixture("tok2"))
		require.NoError(t, err)

		assert.Equal(t, departmentID, achieved)
		assert.Equal(t, departmentID.String(), gotForm["uuid"][0])
		assert.Equal(t, "tok2", gotForm["__RequestVerificationToken"][0])
	})

	t.Run("echoed department wins over submitted one", func(t *testing.T) {
		other := uuid.MustParse("22222222-2222-2222-2222-222222222222")

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(departmentEchoFixture(other.String())))
		}))
		defer server.Close()

		client, err := NewOfficeManagerClient(server.URL, time.Second)
		require.NoError(t, err)
		defer client.Close()

		achieved, err := client.SelectScope(context.Background(), departmentID, scopePageFixture("tok2"))
		require.NoError(t, err)
		assert.Equal(t, other, achieved)
	})

	t.Run("scope page without token fails closed", func(t *testing.T) {
		client, err := NewOfficeManagerClient("https://office.example", time.Second)
		require.NoError(t, err)
		defer client.Close()

		_, err = client.SelectScope(context.Background(), departmentID, "<html><body>error</body></html>")

		var missing model.MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "__RequestVerificationToken", missing.Field)
	})
}

func TestOfficeManagerSelectRole(t *testing.T) {
	var gotForm map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Infrastructure/Authenticate/SelectRole", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_, _ = w.Write([]byte(scopePageFixture("tok3")))
	}))
	defer server.Close()

	client, err := NewOfficeManagerClient(server.URL, time.Second)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.SelectRole(context.Background(), model.RoleOfficeManager, scopePageFixture("tok2"))
	require.NoError(t, err)

	assert.Equal(t, "7", gotForm["roleId"][0])
	assert.Equal(t, "tok2", gotForm["__RequestVerificationToken"][0])
}

func TestOfficeManagerCookieMapKeepsDeepPathCookies(t *testing.T) {
	departmentID := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	// A cookie set without an explicit Path on a deep-path response gets
	// that path as its default scope. The stored artifact must carry it
	// anyway, or the session is scope-verified but unusable.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.SetCookie(w, &http.Cookie{Name: "root.session", Value: "kept", Path: "/"})
			_, _ = w.Write([]byte(entryPageFixture()))
		case "/Infrastructure/Authenticate/SelectDepartment":
			http.SetCookie(w, &http.Cookie{Name: "auth.session", Value: "deep-scoped"})
			_, _ = w.Write([]byte("dashboard"))
		}
	}))
	defer server.Close()

	client, err := NewOfficeManagerClient(server.URL, time.Second)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.EnterDomain(context.Background())
	require.NoError(t, err)

	_, err = client.SelectScope(context.Background(), departmentID, scopePageFixture("tok2"))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"root.session": "kept",
		"auth.session": "deep-scoped",
	}, client.CookieMap())
}

func TestOfficeManagerCookieMap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: ".CSDS", Value: "office-session"})
		_, _ = w.Write([]byte(entryPageFixture()))
	}))
	defer server.Close()

	client, err := NewOfficeManagerClient(server.URL, time.Second)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.EnterDomain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{".CSDS": "office-session"}, client.CookieMap())
}
