// Package verification issues and redeems email verification links.
//
// Only a SHA-256 of the secret is stored in verifications/{uid}; the secret
// itself travels in the mailed link.
package verification

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// TTL is how long a link stays valid.
const TTL = 24 * time.Hour

var (
	ErrBadRequest = errors.New("bad request")
	// ErrInvalidLink covers unknown, mismatched and expired links alike.
	ErrInvalidLink = errors.New("invalid or expired verification link")
)

func IsErrBadRequest(err error) bool  { return errors.Is(err, ErrBadRequest) }
func IsErrInvalidLink(err error) bool { return errors.Is(err, ErrInvalidLink) }

type tokenDoc struct {
	Hash      string    `firestore:"hash"`
	Email     string    `firestore:"email"`
	ExpiresAt time.Time `firestore:"expiresAt"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
}

// NewSecret returns 32 random bytes, base64url encoded.
func NewSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// BuildLink returns <base>/verify?userId=<uid>&secret=<secret>.
func BuildLink(baseURL, uid, secret string) string {
	q := url.Values{}
	q.Set("userId", uid)
	q.Set("secret", secret)
	return strings.TrimRight(baseURL, "/") + "/verify?" + q.Encode()
}

func checkToken(d tokenDoc, secret string, now time.Time) error {
	if d.Hash == "" || !now.Before(d.ExpiresAt) {
		return ErrInvalidLink
	}
	if subtle.ConstantTimeCompare([]byte(d.Hash), []byte(hashSecret(secret))) != 1 {
		return ErrInvalidLink
	}
	return nil
}
