package profile

import (
	"fmt"
	"time"

	"reliefmatch/backend/internal/models"

	"cloud.google.com/go/firestore"
)

type profileDoc struct {
	CreatedAt  time.Time `firestore:"createdAt,serverTimestamp"`
	Name       string    `firestore:"name"`
	Phone      string    `firestore:"phone"`
	IsVerified bool      `firestore:"isVerified"`
	Role       string    `firestore:"role"`
}

func fromDoc(id string, createdAt, updatedAt time.Time, d profileDoc) UserProfile {
	if !d.CreatedAt.IsZero() {
		createdAt = d.CreatedAt
	}
	role := models.Role(d.Role)
	if !role.Valid() {
		role = models.RoleHelper
	}
	return UserProfile{
		ID:         id,
		Name:       d.Name,
		Phone:      d.Phone,
		IsVerified: d.IsVerified,
		Role:       role,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (*UserProfile, error) {
	var d profileDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	p := fromDoc(snap.Ref.ID, snap.CreateTime, snap.UpdateTime, d)
	return &p, nil
}
