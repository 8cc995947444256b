package match

import (
	"fmt"
	"strings"
	"time"

	"reliefmatch/backend/internal/domain/request"
	"reliefmatch/backend/internal/domain/resource"
	"reliefmatch/backend/internal/models"
)

// Match pairs one request with one resource.
type Match struct {
	ID          models.MatchID     `json:"id"`
	RequestID   models.RequestID   `json:"requestId"`
	ResourceID  models.ResourceID  `json:"resourceId"`
	Status      models.MatchStatus `json:"status"`
	RequesterID string             `json:"requesterId,omitempty"`
	HelperID    string             `json:"helperId,omitempty"`
	CreatedBy   string             `json:"createdBy,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type CreateMatchInput struct {
	RequestID  models.RequestID  `json:"requestId"`
	ResourceID models.ResourceID `json:"resourceId"`
}

func (in *CreateMatchInput) Trim() {
	in.RequestID = models.RequestID(strings.TrimSpace(string(in.RequestID)))
	in.ResourceID = models.ResourceID(strings.TrimSpace(string(in.ResourceID)))
}

type ListMatchesInput struct {
	RequestID  models.RequestID  `json:"requestId,omitempty"`
	ResourceID models.ResourceID `json:"resourceId,omitempty"`
	Limit      int               `json:"limit,omitempty"`
}

// Report summarises one reconciliation pass.
type Report struct {
	Scanned     int                `json:"scanned"`
	Repaired    int                `json:"repaired"`
	Orphaned    int                `json:"orphaned"`
	RepairedIDs []models.RequestID `json:"repairedIds"`
}

// CheckPair reports whether req and res may be matched right now.
// A resource may back several matches; the request may back only one.
func CheckPair(req *request.EmergencyRequest, res *resource.Resource) error {
	if req == nil {
		return ErrNotFound
	}
	if res == nil {
		return ErrNotFound
	}
	if req.Type != res.Type {
		return fmt.Errorf("%w: resource type %s does not match request type %s", ErrBadRequest, res.Type, req.Type)
	}
	if !res.Availability {
		return fmt.Errorf("%w: resource %s is not available", ErrConflict, res.ID)
	}
	if req.Status != models.StatusPending {
		return fmt.Errorf("%w: request %s is already %s", ErrConflict, req.ID, req.Status)
	}
	return nil
}
