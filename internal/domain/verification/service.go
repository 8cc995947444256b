package verification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/storeerr"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
)

// UserUpdater is the part of *auth.Client used here.
type UserUpdater interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
}

// ProfileMarker is implemented by *profile.Service.
type ProfileMarker interface {
	MarkVerified(ctx context.Context, uid string) error
}

type Service struct {
	fs       *firestore.Client
	users    UserUpdater
	profiles ProfileMarker
	baseURL  string
	now      func() time.Time
}

func NewService(fs *firestore.Client, users UserUpdater, profiles ProfileMarker, baseURL string) *Service {
	return &Service{fs: fs, users: users, profiles: profiles, baseURL: baseURL, now: time.Now}
}

// mailDoc follows the Firebase "Trigger Email" extension layout; the
// extension watches the mail collection and delivers each document.
type mailDoc struct {
	To      []string    `firestore:"to"`
	Message mailMessage `firestore:"message"`
}

type mailMessage struct {
	Subject string `firestore:"subject"`
	Text    string `firestore:"text"`
	HTML    string `firestore:"html"`
}

// Create issues a fresh link for uid and queues the email. Any previous link
// for the same user stops working.
func (s *Service) Create(ctx context.Context, uid, email string) error {
	uid = strings.TrimSpace(uid)
	email = strings.TrimSpace(email)
	if uid == "" || email == "" {
		return fmt.Errorf("%w: uid and email are required", ErrBadRequest)
	}

	secret, err := NewSecret()
	if err != nil {
		return err
	}
	link := BuildLink(s.baseURL, uid, secret)

	tokRef := s.fs.Collection(models.ColVerifications).Doc(uid)
	mailRef := s.fs.Collection(models.ColMail).NewDoc()
	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(tokRef, tokenDoc{
			Hash:      hashSecret(secret),
			Email:     email,
			ExpiresAt: s.now().Add(TTL).UTC(),
		}); err != nil {
			return err
		}
		return tx.Create(mailRef, mailDoc{
			To: []string{email},
			Message: mailMessage{
				Subject: "Verify your email",
				Text:    "Open this link to verify your email address: " + link,
				HTML:    fmt.Sprintf(`<p>Open <a href="%s">this link</a> to verify your email address.</p>`, link),
			},
		})
	})
	if err != nil {
		return storeerr.Wrap("queue verification mail", err)
	}
	log.Printf("[verification] link queued for %s", uid)
	return nil
}

// Verify redeems a link. Partial parameters are a bad request; unknown,
// wrong or expired secrets are ErrInvalidLink, as is a link sent to an
// address the account no longer uses. Neither is worth retrying.
//
// The token is checked and deleted in one transaction, so a link is
// redeemed at most once even under concurrent clicks.
func (s *Service) Verify(ctx context.Context, uid, secret string) error {
	uid = strings.TrimSpace(uid)
	secret = strings.TrimSpace(secret)
	if uid == "" || secret == "" {
		return fmt.Errorf("%w: userId and secret are required", ErrBadRequest)
	}

	d, err := s.redeem(ctx, uid, secret)
	if err != nil {
		return err
	}

	if s.users != nil {
		u, err := s.users.GetUser(ctx, uid)
		if err != nil {
			return fmt.Errorf("get auth user: %w", err)
		}
		if u == nil || u.UserInfo == nil || !strings.EqualFold(strings.TrimSpace(u.Email), d.Email) {
			log.Printf("[verification] link for %s was sent to a previous address", uid)
			return ErrInvalidLink
		}
		if _, err := s.users.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).EmailVerified(true)); err != nil {
			return fmt.Errorf("mark auth user verified: %w", err)
		}
	}
	if s.profiles != nil {
		if err := s.profiles.MarkVerified(ctx, uid); err != nil && !storeerr.IsNotFound(err) {
			return err
		}
	}
	return nil
}

// redeem checks secret against the stored token and deletes it.
func (s *Service) redeem(ctx context.Context, uid, secret string) (tokenDoc, error) {
	ref := s.fs.Collection(models.ColVerifications).Doc(uid)
	var d tokenDoc
	err := s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		d = tokenDoc{}
		if err := snap.DataTo(&d); err != nil {
			return fmt.Errorf("decode verification %s: %w", uid, err)
		}
		if err := checkToken(d, secret, s.now()); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	switch {
	case errors.Is(err, ErrInvalidLink):
		return tokenDoc{}, ErrInvalidLink
	case err != nil:
		err = storeerr.Wrap("redeem verification", err)
		if storeerr.IsNotFound(err) {
			return tokenDoc{}, ErrInvalidLink
		}
		return tokenDoc{}, err
	}
	return d, nil
}
