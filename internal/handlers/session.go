package handlers

import (
	"context"
	"net/http"
	"time"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/httpjson"
	"reliefmatch/backend/internal/middleware"

	"firebase.google.com/go/v4/auth"
)

// SessionIssuer is the part of *auth.Client used for cookie sessions.
type SessionIssuer interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// recentSignIn bounds how old a sign-in may be when trading it for a cookie.
const recentSignIn = 5 * time.Minute

type Sessions struct {
	auth   SessionIssuer
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessions(a SessionIssuer, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{auth: a, ttl: ttl, secure: secure, now: time.Now}
}

type createSessionReq struct {
	IDToken string `json:"idToken"`
}

// Create exchanges a fresh ID token for an HttpOnly session cookie.
func (h *Sessions) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionReq
	if err := httpjson.Read(r, &req); err != nil || req.IDToken == "" {
		httpjson.Error(w, http.StatusBadRequest, "idToken is required")
		return
	}
	tok, err := h.auth.VerifyIDTokenAndCheckRevoked(r.Context(), req.IDToken)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if authTime(tok).Before(h.now().Add(-recentSignIn)) {
		httpjson.Error(w, http.StatusUnauthorized, "recent sign-in required")
		return
	}
	cookie, err := h.auth.SessionCookie(r.Context(), req.IDToken, h.ttl)
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    cookie,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	httpjson.Write(w, http.StatusOK, middleware.SessionFromToken(tok))
}

// Delete revokes the caller's refresh tokens and clears the cookie. Cookies
// minted before the revocation are rejected from then on, since WithAuth and
// the socket.io handshake verify with revocation checks.
func (h *Sessions) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := authctx.UID(r.Context())
	if err := h.auth.RevokeRefreshTokens(r.Context(), uid); err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "failed to revoke session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func authTime(tok *auth.Token) time.Time {
	return time.Unix(tok.AuthTime, 0)
}
