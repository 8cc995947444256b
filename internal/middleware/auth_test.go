package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/models"

	"firebase.google.com/go/v4/auth"
)

type fakeVerifier struct {
	idTokens map[string]*auth.Token
	cookies  map[string]*auth.Token
	revoked  map[string]bool
}

func (f fakeVerifier) VerifyIDTokenAndCheckRevoked(_ context.Context, t string) (*auth.Token, error) {
	if tok, ok := f.idTokens[t]; ok {
		return tok, nil
	}
	return nil, errors.New("bad id token")
}

func (f fakeVerifier) VerifySessionCookieAndCheckRevoked(_ context.Context, c string) (*auth.Token, error) {
	if f.revoked[c] {
		return nil, errors.New("session cookie has been revoked")
	}
	if tok, ok := f.cookies[c]; ok {
		return tok, nil
	}
	return nil, errors.New("bad cookie")
}

func newVerifier() fakeVerifier {
	return fakeVerifier{
		idTokens: map[string]*auth.Token{
			"good": {UID: "u1", Claims: map[string]interface{}{"email": "a@example.com", "email_verified": true, "role": "seeker"}},
		},
		cookies: map[string]*auth.Token{
			"sess":   {UID: "admin1", Claims: map[string]interface{}{"admin": true}},
			"logout": {UID: "u1"},
		},
		revoked: map[string]bool{"logout": true},
	}
}

func serve(h func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, *authctx.Session) {
	var seen *authctx.Session
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = authctx.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	WithAuth(newVerifier())(h(inner)).ServeHTTP(rec, req)
	return rec, seen
}

func passthrough(next http.Handler) http.Handler { return next }

func TestWithAuthBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer good")

	rec, s := serve(passthrough, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if s.UID != "u1" || s.Email != "a@example.com" || !s.EmailVerified || s.Role != models.RoleSeeker {
		t.Errorf("session = %+v", s)
	}
}

func TestWithAuthSessionCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess"})
	req.Header.Set("Authorization", "Bearer good")

	_, s := serve(passthrough, req)
	if s == nil || s.UID != "admin1" || !s.IsAdmin() {
		t.Fatalf("cookie should win over header: %+v", s)
	}
}

func TestWithAuthRejects(t *testing.T) {
	cases := map[string]func(*http.Request){
		"missing":    func(*http.Request) {},
		"basic":      func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
		"bad token":  func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
		"bad cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"}) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
			mutate(req)
			rec, s := serve(passthrough, req)
			if rec.Code != http.StatusUnauthorized || s != nil {
				t.Errorf("status = %d session = %+v", rec.Code, s)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/reconcile", nil)
	req.Header.Set("Authorization", "Bearer good")
	if rec, _ := serve(RequireAdmin, req); rec.Code != http.StatusForbidden {
		t.Errorf("seeker got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/admin/reconcile", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess"})
	if rec, _ := serve(RequireAdmin, req); rec.Code != http.StatusNoContent {
		t.Errorf("admin got %d", rec.Code)
	}
}

func TestRoleFromClaims(t *testing.T) {
	tests := []struct {
		claims map[string]any
		want   models.Role
	}{
		{nil, ""},
		{map[string]any{"role": "HELPER"}, models.RoleHelper},
		{map[string]any{"role": " admin "}, models.RoleAdmin},
		{map[string]any{"role": "owner"}, ""},
		{map[string]any{"admin": true, "role": "SEEKER"}, models.RoleAdmin},
		{map[string]any{"admin": "yes"}, ""},
	}
	for _, tt := range tests {
		if got := RoleFromClaims(tt.claims); got != tt.want {
			t.Errorf("RoleFromClaims(%v) = %q, want %q", tt.claims, got, tt.want)
		}
	}
}

func TestClaimsForRoleRoundTrip(t *testing.T) {
	for _, r := range []models.Role{models.RoleHelper, models.RoleSeeker, models.RoleAdmin} {
		if got := RoleFromClaims(ClaimsForRole(r)); got != r {
			t.Errorf("%s round-tripped to %q", r, got)
		}
	}
}

func TestWithAuthRejectsRevokedCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "logout"})

	rec, s := serve(passthrough, req)
	if rec.Code != http.StatusUnauthorized || s != nil {
		t.Errorf("revoked cookie accepted: status=%d session=%+v", rec.Code, s)
	}
}
