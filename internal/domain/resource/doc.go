package resource

import (
	"fmt"
	"time"

	"reliefmatch/backend/internal/domain/geo"
	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/utils"

	"cloud.google.com/go/firestore"
)

type resourceDoc struct {
	CreatedAt    time.Time   `firestore:"createdAt,serverTimestamp"`
	UserID       string      `firestore:"userId"`
	Type         string      `firestore:"type"`
	Description  string      `firestore:"description"`
	Location     interface{} `firestore:"location"`
	Availability bool        `firestore:"availability"`
	Keywords     []string    `firestore:"keywords,omitempty"`
}

func toDoc(r Resource) (resourceDoc, error) {
	loc, err := geo.EncodeLocation(r.Location)
	if err != nil {
		return resourceDoc{}, err
	}
	return resourceDoc{
		UserID:       r.UserID,
		Type:         string(r.Type),
		Description:  r.Description,
		Location:     loc,
		Availability: r.Availability,
		Keywords:     utils.Keywords(string(r.Type), r.Description, r.Location.Address),
	}, nil
}

func fromDoc(id string, createdAt, updatedAt time.Time, d resourceDoc) (Resource, error) {
	if !d.CreatedAt.IsZero() {
		createdAt = d.CreatedAt
	}
	loc, err := geo.DecodeLocationField(d.Location)
	if err != nil {
		return Resource{}, fmt.Errorf("resource %s: %w", id, err)
	}
	r := Resource{
		ID:           models.ResourceID(id),
		UserID:       d.UserID,
		Type:         models.Category(d.Type),
		Description:  d.Description,
		Location:     loc,
		Availability: d.Availability,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
	if !r.Type.Valid() {
		return Resource{}, fmt.Errorf("resource %s: unknown type %q", id, d.Type)
	}
	return r, nil
}

// FromSnapshot maps a stored resource document to the domain type.
func FromSnapshot(snap *firestore.DocumentSnapshot) (Resource, error) {
	var d resourceDoc
	if err := snap.DataTo(&d); err != nil {
		return Resource{}, fmt.Errorf("resource %s: %w", snap.Ref.ID, err)
	}
	return fromDoc(snap.Ref.ID, snap.CreateTime, snap.UpdateTime, d)
}
