package match

import (
	"fmt"
	"time"

	"reliefmatch/backend/internal/models"

	"cloud.google.com/go/firestore"
)

type matchDoc struct {
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
	RequestID   string    `firestore:"requestId"`
	ResourceID  string    `firestore:"resourceId"`
	Status      string    `firestore:"status"`
	RequesterID string    `firestore:"requesterId,omitempty"`
	HelperID    string    `firestore:"helperId,omitempty"`
	CreatedBy   string    `firestore:"createdBy,omitempty"`
}

func toDoc(m Match) matchDoc {
	if m.Status == "" {
		m.Status = models.MatchPending
	}
	return matchDoc{
		RequestID:   string(m.RequestID),
		ResourceID:  string(m.ResourceID),
		Status:      string(m.Status),
		RequesterID: m.RequesterID,
		HelperID:    m.HelperID,
		CreatedBy:   m.CreatedBy,
	}
}

func fromDoc(id string, createdAt, updatedAt time.Time, d matchDoc) (Match, error) {
	if d.RequestID == "" || d.ResourceID == "" {
		return Match{}, fmt.Errorf("match %s: missing requestId or resourceId", id)
	}
	if !d.CreatedAt.IsZero() {
		createdAt = d.CreatedAt
	}
	st := models.MatchStatus(d.Status)
	if st == "" {
		st = models.MatchPending
	}
	return Match{
		ID:          models.MatchID(id),
		RequestID:   models.RequestID(d.RequestID),
		ResourceID:  models.ResourceID(d.ResourceID),
		Status:      st,
		RequesterID: d.RequesterID,
		HelperID:    d.HelperID,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// FromSnapshot maps a stored match document to the domain type.
func FromSnapshot(snap *firestore.DocumentSnapshot) (Match, error) {
	var d matchDoc
	if err := snap.DataTo(&d); err != nil {
		return Match{}, fmt.Errorf("match %s: %w", snap.Ref.ID, err)
	}
	return fromDoc(snap.Ref.ID, snap.CreateTime, snap.UpdateTime, d)
}
