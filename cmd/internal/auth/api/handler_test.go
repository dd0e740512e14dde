package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"srauth/cmd/identity"
	"srauth/cmd/internal/auth/revocation"
	"srauth/cmd/internal/auth/session"
	"srauth/cmd/internal/auth/token"
	"srauth/cmd/security/password"
)

func newTestServer(t *testing.T, scfg session.Config) (*httptest.Server, identity.User) {
	t.Helper()

	pw := password.DefaultConfig()
	pw.Params.MemoryKiB = 16 * 1024
	pw.Params.Iterations = 1

	users, err := identity.NewMemoryStore(pw)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	user, err := users.CreateUser(context.Background(), identity.CreateUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-enough",
		IsStaff:  true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	tcfg := token.DefaultConfig()
	tcfg.Secret = []byte("0123456789abcdef0123456789abcdef")
	tokens, err := token.NewManager(tcfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	svc := session.NewService(scfg, tokens, revocation.NewMemoryStore(), users, nil, nil)

	h := NewHandler(LoadConfigFromEnv(), svc, users, nil)
	mux := http.NewServeMux()
	h.Register(mux)

	srv := httptest.NewServer(h.CookieToBearer(mux))
	t.Cleanup(srv.Close)
	return srv, user
}

func doLogin(t *testing.T, srv *httptest.Server, username, pass string) *http.Response {
	t.Helper()
	body := strings.NewReader(`{"username":"` + username + `","password":"` + pass + `"}`)
	resp, err := http.Post(srv.URL+"/login", "application/json", body)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	return resp
}

func findCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	_ = resp.Body.Close()
	return v
}

func TestLoginSetsCookies(t *testing.T) {
	srv, user := newTestServer(t, session.DefaultConfig())

	resp := doLogin(t, srv, "alice", "s3cret-enough")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	access := findCookie(t, resp, "access_token")
	refresh := findCookie(t, resp, "refresh_token")
	for _, c := range []*http.Cookie{access, refresh} {
		if !c.HttpOnly {
			t.Fatalf("cookie %q not HttpOnly", c.Name)
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Fatalf("cookie %q SameSite = %v", c.Name, c.SameSite)
		}
		if c.Value == "" {
			t.Fatalf("cookie %q empty", c.Name)
		}
	}
	if !refresh.Expires.After(access.Expires) {
		t.Fatal("refresh cookie should outlive access cookie")
	}

	body := decodeBody[loginResponse](t, resp)
	if body.Message != "Login successful" {
		t.Fatalf("message = %q", body.Message)
	}
	if body.User.ID != user.ID || body.User.Role != "admin" {
		t.Fatalf("user = %+v", body.User)
	}
}

func TestLoginFailures(t *testing.T) {
	srv, _ := newTestServer(t, session.DefaultConfig())

	resp := doLogin(t, srv, "alice", "wrong-password")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody[detailResponse](t, resp)
	if body.Detail != "No active account found with the given credentials" {
		t.Fatalf("detail = %q", body.Detail)
	}
	if len(resp.Cookies()) != 0 {
		t.Fatal("failed login must not set cookies")
	}

	resp, err := http.Post(srv.URL+"/login", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad body status = %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestProfileRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, session.DefaultConfig())

	// No credential at all.
	resp, err := http.Get(srv.URL + "/profile")
	if err != nil {
		t.Fatalf("GET /profile: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody[detailResponse](t, resp)
	if body.Detail != "Authentication credentials were not provided" {
		t.Fatalf("detail = %q", body.Detail)
	}

	// Forged unsigned token in the access cookie.
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"user-1","tkn":"access"}`))
	forged := header + "." + payload + "."

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/profile", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: forged})
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /profile: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("forged token status = %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestRefreshMissingCookie(t *testing.T) {
	srv, _ := newTestServer(t, session.DefaultConfig())

	resp, err := http.Post(srv.URL+"/token/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /token/refresh: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody[detailResponse](t, resp)
	if body.Detail != "Refresh token missing in cookies" {
		t.Fatalf("detail = %q", body.Detail)
	}
}

func TestLoginProfileRefreshLogoutFlow(t *testing.T) {
	srv, user := newTestServer(t, session.DefaultConfig())

	login := doLogin(t, srv, "alice", "s3cret-enough")
	if login.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", login.StatusCode)
	}
	access := findCookie(t, login, "access_token")
	refresh := findCookie(t, login, "refresh_token")
	_ = login.Body.Close()

	// Profile via access cookie only: the bridge promotes it to a header.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/profile", nil)
	req.AddCookie(access)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /profile: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile status = %d", resp.StatusCode)
	}
	profile := decodeBody[userSummary](t, resp)
	if profile.ID != user.ID || profile.Username != "alice" || profile.Role != "admin" {
		t.Fatalf("profile = %+v", profile)
	}

	// Refresh: renewed access cookie, refresh cookie untouched by default.
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/token/refresh", nil)
	req.AddCookie(refresh)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /token/refresh: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d", resp.StatusCode)
	}
	newAccess := findCookie(t, resp, "access_token")
	if newAccess.Value == access.Value {
		t.Fatal("refresh did not renew the access token")
	}
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			t.Fatal("refresh must not rotate the refresh cookie by default")
		}
	}
	_ = resp.Body.Close()

	// The renewed access token authenticates.
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/profile", nil)
	req.AddCookie(newAccess)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /profile: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile with renewed access status = %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	// Logout: 205, both cookies cleared.
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/logout", nil)
	req.AddCookie(refresh)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /logout: %v", err)
	}
	if resp.StatusCode != http.StatusResetContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}
	for _, name := range []string{"access_token", "refresh_token"} {
		c := findCookie(t, resp, name)
		if c.Value != "" || c.MaxAge >= 0 {
			t.Fatalf("cookie %q not cleared: %+v", name, c)
		}
	}
	_ = resp.Body.Close()

	// The revoked refresh token is now rejected.
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/token/refresh", nil)
	req.AddCookie(refresh)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /token/refresh: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after logout status = %d", resp.StatusCode)
	}
	body := decodeBody[detailResponse](t, resp)
	if body.Detail != "Invalid refresh token" {
		t.Fatalf("detail = %q", body.Detail)
	}

	// Logout again with the same token: still 205.
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/logout", nil)
	req.AddCookie(refresh)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /logout: %v", err)
	}
	if resp.StatusCode != http.StatusResetContent {
		t.Fatalf("second logout status = %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestRefreshRotationSetsNewCookie(t *testing.T) {
	srv, _ := newTestServer(t, session.Config{RotateOnUse: true})

	login := doLogin(t, srv, "alice", "s3cret-enough")
	refresh := findCookie(t, login, "refresh_token")
	_ = login.Body.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/token/refresh", nil)
	req.AddCookie(refresh)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /token/refresh: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d", resp.StatusCode)
	}
	rotated := findCookie(t, resp, "refresh_token")
	if rotated.Value == refresh.Value {
		t.Fatal("rotation enabled but refresh cookie unchanged")
	}
	_ = resp.Body.Close()

	// The consumed token no longer refreshes.
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/token/refresh", nil)
	req.AddCookie(refresh)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /token/refresh: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("reused token status = %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestAuthorizationHeaderWinsOverCookie(t *testing.T) {
	srv, _ := newTestServer(t, session.DefaultConfig())

	login := doLogin(t, srv, "alice", "s3cret-enough")
	access := findCookie(t, login, "access_token")
	_ = login.Body.Close()

	// A bogus explicit header is not silently replaced by the valid cookie.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/profile", nil)
	req.AddCookie(access)
	req.Header.Set("Authorization", "Bearer bogus")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /profile: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}
