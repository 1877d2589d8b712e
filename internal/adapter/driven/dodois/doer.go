// Package dodois implements the identity-domain and persona-domain client
// ports against the platform's web endpoints. Every client owns one HTTP
// client with its own cookie jar, scoped to a single authentication run;
// identity-domain and persona-domain cookies are never mixed in one jar.
package dodois

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// userAgent is the fixed identity this integration presents to the platform.
const userAgent = "dodoextbot"

// recordingJar wraps a standard cookie jar and keeps its own record of every
// cookie the server sets. Jar.Cookies filters by path, so a snapshot taken
// at the domain root would silently miss a cookie set without an explicit
// Path on a deep-path response; the stored artifact has to carry those too.
type recordingJar struct {
	inner http.CookieJar

	mu   sync.Mutex
	seen map[string]string
}

func newRecordingJar() (*recordingJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &recordingJar{inner: inner, seen: make(map[string]string)}, nil
}

func (j *recordingJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	for _, cookie := range cookies {
		if cookie.MaxAge < 0 {
			delete(j.seen, cookie.Name)
			continue
		}
		j.seen[cookie.Name] = cookie.Value
	}
	j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
}

func (j *recordingJar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// snapshot returns every recorded cookie as name/value pairs.
func (j *recordingJar) snapshot() map[string]string {
	j.mu.Lock()
	defer j.mu.Unlock()
	cookies := make(map[string]string, len(j.seen))
	for name, value := range j.seen {
		cookies[name] = value
	}
	return cookies
}

// doer is the shared HTTP plumbing for one domain: base URL, jar-backed
// client, User-Agent, redirect following, and per-call timeout.
type doer struct {
	base   *url.URL
	jar    *recordingJar
	client *http.Client
}

func newDoer(baseURL string, timeout time.Duration) (*doer, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	jar, err := newRecordingJar()
	if err != nil {
		return nil, err
	}

	return &doer{
		base: base,
		jar:  jar,
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

func (d *doer) get(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.resolve(path), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	return d.do(req)
}

// postForm submits a form-encoded POST. extraCookies are attached to the
// request without entering this domain's jar (the shift-manager flow
// forwards identity-domain cookies this way).
func (d *doer) postForm(ctx context.Context, path string, form url.Values, extraCookies []*http.Cookie) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.resolve(path), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range extraCookies {
		req.AddCookie(cookie)
	}
	return d.do(req)
}

func (d *doer) postJSON(ctx context.Context, path string, body any, extraCookies []*http.Cookie) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.resolve(path), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range extraCookies {
		req.AddCookie(cookie)
	}
	return d.do(req)
}

func (d *doer) do(req *http.Request) (string, error) {
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}

	// Redirects are followed by the client, so anything >= 400 here is a
	// real failure, not part of the flow.
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	return string(body), nil
}

func (d *doer) resolve(path string) string {
	ref := &url.URL{Path: path}
	return d.base.ResolveReference(ref).String()
}

// cookies snapshots every cookie this domain has set during the run.
func (d *doer) cookies() []*http.Cookie {
	snapshot := d.jar.snapshot()
	cookies := make([]*http.Cookie, 0, len(snapshot))
	for name, value := range snapshot {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	return cookies
}

// cookieMap snapshots every cookie this domain has set as a name/value map.
func (d *doer) cookieMap() map[string]string {
	return d.jar.snapshot()
}

// close releases the client's idle connections. Called on every exit path
// of a run.
func (d *doer) close() {
	d.client.CloseIdleConnections()
}
