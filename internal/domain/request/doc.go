package request

import (
	"fmt"
	"time"

	"reliefmatch/backend/internal/domain/geo"
	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/utils"

	"cloud.google.com/go/firestore"
)

// requestDoc is the stored shape of a request. The id is the document name;
// createdAt is a server timestamp and updatedAt the document update time.
type requestDoc struct {
	CreatedAt   time.Time   `firestore:"createdAt,serverTimestamp"`
	UserID      string      `firestore:"userId"`
	Type        string      `firestore:"type"`
	Description string      `firestore:"description"`
	Location    interface{} `firestore:"location"`
	Status      string      `firestore:"status"`
	Priority    string      `firestore:"priority"`
	Keywords    []string    `firestore:"keywords,omitempty"`
}

func toDoc(r EmergencyRequest) (requestDoc, error) {
	loc, err := geo.EncodeLocation(r.Location)
	if err != nil {
		return requestDoc{}, err
	}
	return requestDoc{
		UserID:      r.UserID,
		Type:        string(r.Type),
		Description: r.Description,
		Location:    loc,
		Status:      string(r.Status),
		Priority:    string(r.Priority),
		Keywords:    utils.Keywords(string(r.Type), r.Description, r.Location.Address),
	}, nil
}

func fromDoc(id string, createdAt, updatedAt time.Time, d requestDoc) (EmergencyRequest, error) {
	if !d.CreatedAt.IsZero() {
		createdAt = d.CreatedAt
	}
	loc, err := geo.DecodeLocationField(d.Location)
	if err != nil {
		return EmergencyRequest{}, fmt.Errorf("request %s: %w", id, err)
	}
	r := EmergencyRequest{
		ID:          models.RequestID(id),
		UserID:      d.UserID,
		Type:        models.Category(d.Type),
		Description: d.Description,
		Location:    loc,
		Status:      models.RequestStatus(d.Status),
		Priority:    models.Priority(d.Priority),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if !r.Type.Valid() {
		return EmergencyRequest{}, fmt.Errorf("request %s: unknown type %q", id, d.Type)
	}
	if !r.Status.Valid() {
		return EmergencyRequest{}, fmt.Errorf("request %s: unknown status %q", id, d.Status)
	}
	if !r.Priority.Valid() {
		r.Priority = models.PriorityMedium
	}
	return r, nil
}

// FromSnapshot maps a stored request document to the domain type.
func FromSnapshot(snap *firestore.DocumentSnapshot) (EmergencyRequest, error) {
	var d requestDoc
	if err := snap.DataTo(&d); err != nil {
		return EmergencyRequest{}, fmt.Errorf("request %s: %w", snap.Ref.ID, err)
	}
	return fromDoc(snap.Ref.ID, snap.CreateTime, snap.UpdateTime, d)
}
