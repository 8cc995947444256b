package middleware

import (
	"context"
	"net/http"
	"strings"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/httpjson"
	"reliefmatch/backend/internal/models"

	"firebase.google.com/go/v4/auth"
)

// SessionCookieName is the only cookie name Firebase Hosting forwards.
const SessionCookieName = "__session"

// TokenVerifier is the part of *auth.Client the middleware needs. Both calls
// consult the user's tokensValidAfterTime, so a logout ends every session.
type TokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	VerifySessionCookieAndCheckRevoked(ctx context.Context, sessionCookie string) (*auth.Token, error)
}

// WithAuth resolves the caller from the session cookie, or from an
// Authorization: Bearer <idToken> header, and stores it in the context.
func WithAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				tok *auth.Token
				err error
			)
			if c, cerr := r.Cookie(SessionCookieName); cerr == nil && c.Value != "" {
				tok, err = v.VerifySessionCookieAndCheckRevoked(r.Context(), c.Value)
			} else {
				h := r.Header.Get("Authorization")
				if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
					httpjson.Error(w, http.StatusUnauthorized, "missing session cookie or Authorization: Bearer <token>")
					return
				}
				tok, err = v.VerifyIDTokenAndCheckRevoked(r.Context(), strings.TrimSpace(h[len("Bearer "):]))
			}
			if err != nil || tok == nil {
				httpjson.Error(w, http.StatusUnauthorized, "invalid or revoked session")
				return
			}

			ctx := authctx.WithSession(r.Context(), SessionFromToken(tok))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFromToken(tok *auth.Token) *authctx.Session {
	s := &authctx.Session{
		UID:    tok.UID,
		Claims: tok.Claims,
		Role:   RoleFromClaims(tok.Claims),
	}
	if v, ok := tok.Claims["email"].(string); ok {
		s.Email = v
	}
	if v, ok := tok.Claims["email_verified"].(bool); ok {
		s.EmailVerified = v
	}
	return s
}

// RoleFromClaims reads the role custom claim set by cmd/set-claims.
// Returns "" when no role claim is present.
func RoleFromClaims(claims map[string]any) models.Role {
	if claims == nil {
		return ""
	}
	if admin, ok := claims["admin"].(bool); ok && admin {
		return models.RoleAdmin
	}
	if role, ok := claims["role"].(string); ok {
		r := models.Role(strings.ToUpper(strings.TrimSpace(role)))
		if r.Valid() {
			return r
		}
	}
	return ""
}

// ClaimsForRole is the custom-claims payload RoleFromClaims reads back.
func ClaimsForRole(r models.Role) map[string]interface{} {
	return map[string]interface{}{
		"role":  string(r),
		"admin": r == models.RoleAdmin,
	}
}

// RequireAdmin must run after WithAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := authctx.FromContext(r.Context())
		if !ok || !s.IsAdmin() {
			httpjson.Error(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}
