package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"learningtime/internal/security"
)

// fakeGoogle serves the token and userinfo endpoints for one account
func fakeGoogle(t *testing.T, email string, verified bool) OAuthProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-access-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "1234",
			"email":          email,
			"verified_email": verified,
			"name":           "Pat Learner",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return OAuthProvider{
		Config: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  srv.URL + "/auth",
				TokenURL: srv.URL + "/token",
			},
			Scopes: []string{"openid", "email", "profile"},
		},
		UserInfoURL: srv.URL + "/userinfo",
	}
}

func callbackRequest(state, cookieState string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state="+url.QueryEscape(state), nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: security.OAuthStateCookieName, Value: cookieState})
	}
	return req
}

func TestStartOAuth(t *testing.T) {
	env := newTestEnv(t, fakeGoogle(t, allowedEmail, true))

	req := httptest.NewRequest(http.MethodGet, "/auth/google/start", nil)
	rr := env.do(req)
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}

	state := findCookie(rr, security.OAuthStateCookieName)
	if state == nil || state.Value == "" {
		t.Fatal("expected an OAuth state cookie")
	}

	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad Location: %v", err)
	}
	q := loc.Query()
	if q.Get("state") != state.Value {
		t.Errorf("state param = %q, want cookie value %q", q.Get("state"), state.Value)
	}
	if q.Get("redirect_uri") != "http://example.com/auth/google/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
}

func TestStartOAuthNotConfigured(t *testing.T) {
	env := newTestEnv(t, OAuthProvider{})

	rr := env.do(httptest.NewRequest(http.MethodGet, "/auth/google/start", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not configured") {
		t.Errorf("expected a configuration message, got %s", rr.Body.String())
	}
}

func TestOAuthCallback(t *testing.T) {
	tests := []struct {
		name         string
		email        string
		verified     bool
		state        string
		cookieState  string
		wantStatus   int
		wantLocation string
		wantSession  bool
	}{
		{name: "allowed account", email: allowedEmail, verified: true, state: "s1", cookieState: "s1", wantStatus: http.StatusSeeOther, wantLocation: "/practice", wantSession: true},
		{name: "account not on allow-list", email: blockedEmail, verified: true, state: "s1", cookieState: "s1", wantStatus: http.StatusSeeOther, wantLocation: "/forbidden", wantSession: true},
		{name: "state mismatch", email: allowedEmail, verified: true, state: "s1", cookieState: "other", wantStatus: http.StatusBadRequest},
		{name: "missing state cookie", email: allowedEmail, verified: true, state: "s1", wantStatus: http.StatusBadRequest},
		{name: "unverified email", email: allowedEmail, verified: false, state: "s1", cookieState: "s1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, fakeGoogle(t, tt.email, tt.verified))

			rr := env.do(callbackRequest(tt.state, tt.cookieState))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantLocation != "" && rr.Header().Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q, want %q", rr.Header().Get("Location"), tt.wantLocation)
			}

			cookie := findCookie(rr, security.SessionCookieName)
			if !tt.wantSession {
				if cookie != nil && cookie.Value != "" {
					t.Errorf("unexpected session cookie")
				}
				return
			}
			if cookie == nil {
				t.Fatal("expected a session cookie")
			}
			session, err := env.auth.ParseSession(cookie.Value)
			if err != nil {
				t.Fatalf("ParseSession() error = %v", err)
			}
			if session.User.Email != tt.email || session.User.Name != "Pat Learner" {
				t.Errorf("session user = %+v", session.User)
			}
		})
	}
}

func TestOAuthCallbackCancelled(t *testing.T) {
	env := newTestEnv(t, fakeGoogle(t, allowedEmail, true))

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied", nil)
	rr := env.do(req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Sign-in was cancelled") {
		t.Errorf("expected cancellation message on login page")
	}
}

func TestHomeAndLogin(t *testing.T) {
	env := newTestEnv(t, OAuthProvider{})
	cookie, _ := env.signIn(t, allowedEmail)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Errorf("anonymous home: status %d location %q", rr.Code, rr.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rr = env.do(req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Test Learner") {
		t.Errorf("signed-in home: status %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookie)
	rr = env.do(req)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/practice" {
		t.Errorf("signed-in login: status %d location %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = env.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Sign-in is not configured") {
		t.Errorf("login page: status %d", rr.Code)
	}

	rr = env.do(httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown path: status = %d, want 404", rr.Code)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, OAuthProvider{})
	cookie, _ := env.signIn(t, allowedEmail)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rr := env.do(req)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Errorf("status %d location %q", rr.Code, rr.Header().Get("Location"))
	}
	if c := findCookie(rr, security.SessionCookieName); c == nil || c.MaxAge >= 0 {
		t.Errorf("expected session cookie to be cleared, got %+v", c)
	}
}

func TestForbiddenPage(t *testing.T) {
	env := newTestEnv(t, OAuthProvider{})
	blocked, _ := env.signIn(t, blockedEmail)

	req := httptest.NewRequest(http.MethodGet, "/forbidden", nil)
	req.AddCookie(blocked)
	rr := env.do(req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), blockedEmail) {
		t.Errorf("forbidden page should name %s", blockedEmail)
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t, OAuthProvider{})
	cookie, token := env.signIn(t, allowedEmail)

	rr := env.do(newJSONRequest(http.MethodGet, "/api/me", "", cookie, ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var me meResponse
	decodeBody(t, rr, &me)
	if me.Email != allowedEmail || me.CSRFToken != token {
		t.Errorf("me = %+v", me)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, OAuthProvider{})
	rr := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("status %d body %q", rr.Code, rr.Body.String())
	}
}
