package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/domain/verification"
	"reliefmatch/backend/internal/middleware"

	"firebase.google.com/go/v4/auth"
)

func TestParseObjectPath(t *testing.T) {
	tests := []struct {
		in         string
		collection string
		id         string
		ok         bool
	}{
		{"requests/r1/photo.jpg", "requests", "r1", true},
		{"resources/s9/a/b.png", "resources", "s9", true},
		{"requests/r1", "", "", false},
		{"requests//x.jpg", "", "", false},
		{"users/u1/x.jpg", "", "", false},
		{"requests/../users/x.jpg", "", "", false},
		{"/requests/r1/x.jpg", "", "", false},
		{"requests/r1/./x.jpg", "", "", false},
	}
	for _, tt := range tests {
		c, id, err := parseObjectPath(tt.in)
		if (err == nil) != tt.ok || c != tt.collection || id != tt.id {
			t.Errorf("parseObjectPath(%q) = %q,%q,%v", tt.in, c, id, err)
		}
	}
}

func TestUploadsRejectsForeignObject(t *testing.T) {
	h := &Uploads{owner: func(_ context.Context, collection, id string) (string, error) {
		if id == "missing" {
			return "", errors.New("not found")
		}
		return "someone-else", nil
	}}
	call := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/uploads/signed-url", strings.NewReader(body))
		req = req.WithContext(authctx.WithSession(req.Context(), &authctx.Session{UID: "me"}))
		rec := httptest.NewRecorder()
		h.CreateSignedUploadURL(rec, req)
		return rec.Code
	}
	if code := call(`{"objectPath":"requests/r1/x.jpg"}`); code != http.StatusForbidden {
		t.Errorf("foreign request: %d", code)
	}
	if code := call(`{"objectPath":"requests/missing/x.jpg"}`); code != http.StatusNotFound {
		t.Errorf("missing request: %d", code)
	}
	if code := call(`{"objectPath":"users/u/x.jpg"}`); code != http.StatusBadRequest {
		t.Errorf("bad path: %d", code)
	}
}

type fakeIssuer struct {
	authTime time.Time
	revoked  string
}

func (f *fakeIssuer) VerifyIDTokenAndCheckRevoked(_ context.Context, tok string) (*auth.Token, error) {
	if tok != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: "u1", AuthTime: f.authTime.Unix(), Claims: map[string]interface{}{"email": "u1@example.com"}}, nil
}

func (f *fakeIssuer) SessionCookie(_ context.Context, _ string, _ time.Duration) (string, error) {
	return "minted", nil
}

func (f *fakeIssuer) RevokeRefreshTokens(_ context.Context, uid string) error {
	f.revoked = uid
	return nil
}

func TestSessionCreate(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	issuer := &fakeIssuer{authTime: now.Add(-time.Minute)}
	h := NewSessions(issuer, time.Hour, true)
	h.now = func() time.Time { return now }

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.Create(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/session", strings.NewReader(body)))
		return rec
	}

	rec := post(`{"idToken":"good"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	c := rec.Result().Cookies()
	if len(c) != 1 || c[0].Name != middleware.SessionCookieName || c[0].Value != "minted" || !c[0].HttpOnly || !c[0].Secure {
		t.Errorf("cookie = %+v", c)
	}
	var s authctx.Session
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil || s.UID != "u1" || s.Email != "u1@example.com" {
		t.Errorf("session = %+v %v", s, err)
	}

	if rec := post(`{"idToken":"bad"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: %d", rec.Code)
	}
	if rec := post(`{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing token: %d", rec.Code)
	}

	issuer.authTime = now.Add(-time.Hour)
	if rec := post(`{"idToken":"good"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("stale sign-in: %d", rec.Code)
	}
}

func TestSessionDelete(t *testing.T) {
	issuer := &fakeIssuer{}
	h := NewSessions(issuer, time.Hour, false)

	req := httptest.NewRequest(http.MethodDelete, "/v1/auth/session", nil)
	req = req.WithContext(authctx.WithSession(req.Context(), &authctx.Session{UID: "u1"}))
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent || issuer.revoked != "u1" {
		t.Errorf("status=%d revoked=%q", rec.Code, issuer.revoked)
	}
	if c := rec.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
		t.Errorf("cookie not cleared: %+v", c)
	}
}

func TestVerifyLinkMissingParams(t *testing.T) {
	h := NewVerification(verification.NewService(nil, nil, nil, "http://localhost"))
	for _, target := range []string{"/verify", "/verify?userId=u1", "/verify?secret=s"} {
		rec := httptest.NewRecorder()
		h.Verify(rec, httptest.NewRequest(http.MethodGet, target, nil))
		var body verifyResp
		_ = json.NewDecoder(rec.Body).Decode(&body)
		if rec.Code != http.StatusBadRequest || body.Status != "error" {
			t.Errorf("%s: %d %+v", target, rec.Code, body)
		}
	}
}

func TestVerificationSendAlreadyVerified(t *testing.T) {
	h := NewVerification(nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/verification", nil)
	req = req.WithContext(authctx.WithSession(req.Context(), &authctx.Session{UID: "u1", EmailVerified: true}))
	rec := httptest.NewRecorder()
	h.Send(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "already_verified") {
		t.Errorf("%d %s", rec.Code, rec.Body)
	}
}
