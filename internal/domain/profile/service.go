package profile

import (
	"context"
	"fmt"
	"log"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/storeerr"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
)

// AuthUsers is the part of *auth.Client used for profiles.
type AuthUsers interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
}

type Service struct {
	client     *firestore.Client
	authClient AuthUsers
}

func NewService(client *firestore.Client, authClient AuthUsers) *Service {
	return &Service{client: client, authClient: authClient}
}

func (s *Service) doc(uid string) *firestore.DocumentRef {
	return s.client.Collection(models.ColUsers).Doc(uid)
}

// Create stores the caller's profile. The phone defaults to the one on the
// auth record, then to the placeholder.
func (s *Service) Create(ctx context.Context, actor *authctx.Session, in CreateProfileInput) (*UserProfile, error) {
	if actor == nil || actor.UID == "" {
		return nil, fmt.Errorf("%w: sign in required", ErrUnauthorized)
	}
	in.Trim()

	if in.Name == "" || len(in.Name) > maxName {
		return nil, fmt.Errorf("%w: name is required (<=%d chars)", ErrBadRequest, maxName)
	}
	if in.Role == "" {
		in.Role = models.RoleHelper
	}
	if err := checkRole(in.Role, actor.IsAdmin()); err != nil {
		return nil, err
	}

	phone := in.Phone
	if phone == "" && s.authClient != nil {
		if rec, err := s.authClient.GetUser(ctx, actor.UID); err == nil {
			phone = rec.PhoneNumber
		} else {
			log.Printf("[profile] auth lookup for %s failed: %v", actor.UID, err)
		}
	}

	_, err := s.doc(actor.UID).Create(ctx, profileDoc{
		Name:       in.Name,
		Phone:      NormalizePhone(phone),
		IsVerified: actor.EmailVerified,
		Role:       string(in.Role),
	})
	if storeerr.IsExists(storeerr.Wrap("create profile", err)) {
		return nil, fmt.Errorf("%w: %s", ErrConflict, actor.UID)
	}
	if err != nil {
		return nil, storeerr.Wrap("create profile", err)
	}
	return s.Get(ctx, actor.UID)
}

// Get gets a user's profile
func (s *Service) Get(ctx context.Context, uid string) (*UserProfile, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	snap, err := s.doc(uid).Get(ctx)
	if err != nil {
		return nil, storeerr.Wrap("get profile", err)
	}
	return fromSnapshot(snap)
}

// Update changes name, phone or role. Users edit their own profile; admins
// may edit anyone's and are the only ones who can grant ADMIN.
func (s *Service) Update(ctx context.Context, actor *authctx.Session, uid string, in UpdateProfileInput) (*UserProfile, error) {
	if actor == nil || actor.UID == "" {
		return nil, fmt.Errorf("%w: sign in required", ErrUnauthorized)
	}
	if uid == "" {
		uid = actor.UID
	}
	if uid != actor.UID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: cannot edit another user's profile", ErrUnauthorized)
	}
	in.Trim()

	var updates []firestore.Update
	if in.Name != nil {
		if *in.Name == "" || len(*in.Name) > maxName {
			return nil, fmt.Errorf("%w: name is required (<=%d chars)", ErrBadRequest, maxName)
		}
		updates = append(updates, firestore.Update{Path: "name", Value: *in.Name})
	}
	if in.Phone != nil {
		updates = append(updates, firestore.Update{Path: "phone", Value: NormalizePhone(*in.Phone)})
	}
	if in.Role != nil {
		if err := checkRole(*in.Role, actor.IsAdmin()); err != nil {
			return nil, err
		}
		updates = append(updates, firestore.Update{Path: "role", Value: string(*in.Role)})
	}
	if len(updates) == 0 {
		return s.Get(ctx, uid)
	}

	if _, err := s.doc(uid).Update(ctx, updates); err != nil {
		return nil, storeerr.Wrap("update profile", err)
	}

	if in.Name != nil && s.authClient != nil {
		if _, err := s.authClient.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).DisplayName(*in.Name)); err != nil {
			// Log but don't fail
			log.Printf("[profile] failed to update auth display name for %s: %v", uid, err)
		}
	}
	return s.Get(ctx, uid)
}

// MarkVerified flags the profile after a successful email verification.
// Returns ErrNotFound when the user has not created a profile yet; Create
// copies the verified flag from the session in that case.
func (s *Service) MarkVerified(ctx context.Context, uid string) error {
	if uid == "" {
		return fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	_, err := s.doc(uid).Update(ctx, []firestore.Update{{Path: "isVerified", Value: true}})
	return storeerr.Wrap("mark profile verified", err)
}
