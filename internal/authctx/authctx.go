// Package authctx carries the verified caller through request handling.
// The session is resolved once by middleware and passed down; handlers never
// re-fetch the current user themselves.
package authctx

import (
	"context"

	"reliefmatch/backend/internal/models"
)

type ctxKey string

const sessionKey ctxKey = "session"

type Session struct {
	UID           string         `json:"uid"`
	Email         string         `json:"email,omitempty"`
	EmailVerified bool           `json:"emailVerified"`
	Role          models.Role    `json:"role,omitempty"`
	Claims        map[string]any `json:"-"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil && s.UID != ""
}

// UID is a shortcut for handlers that only need the caller id.
func UID(ctx context.Context) (string, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return s.UID, true
}
