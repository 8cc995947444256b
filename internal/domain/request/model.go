package request

import (
	"strings"
	"time"

	"reliefmatch/backend/internal/domain/geo"
	"reliefmatch/backend/internal/geocode"
	"reliefmatch/backend/internal/models"
)

// EmergencyRequest is a plea for help posted by a seeker.
type EmergencyRequest struct {
	ID          models.RequestID     `json:"id"`
	UserID      string               `json:"userId"`
	Type        models.Category      `json:"type"`
	Description string               `json:"description"`
	Location    geo.Location         `json:"location"`
	Status      models.RequestStatus `json:"status"`
	Priority    models.Priority      `json:"priority"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type CreateRequestInput struct {
	Type        models.Category `json:"type"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority,omitempty"`
	Location    geocode.Input   `json:"location"`
}

func (in *CreateRequestInput) Trim() {
	in.Type = models.Category(strings.ToUpper(strings.TrimSpace(string(in.Type))))
	in.Priority = models.Priority(strings.ToUpper(strings.TrimSpace(string(in.Priority))))
	in.Description = strings.TrimSpace(in.Description)
	in.Location.Address = strings.TrimSpace(in.Location.Address)
}

type ListRequestsInput struct {
	Type   models.Category      `json:"type,omitempty"`
	Status models.RequestStatus `json:"status,omitempty"`
	UserID string               `json:"userId,omitempty"`
	Query  string               `json:"q,omitempty"`
	Limit  int                  `json:"limit,omitempty"`
}

type UpdateStatusInput struct {
	Status models.RequestStatus `json:"status"`
}

const maxDescription = 2000
