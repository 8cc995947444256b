package resource

import (
	"strings"
	"time"

	"reliefmatch/backend/internal/domain/geo"
	"reliefmatch/backend/internal/domain/matching"
	"reliefmatch/backend/internal/geocode"
	"reliefmatch/backend/internal/models"
)

// Resource is help a helper can offer: a bed, a ride, supplies.
type Resource struct {
	ID           models.ResourceID `json:"id"`
	UserID       string            `json:"userId"`
	Type         models.Category   `json:"type"`
	Description  string            `json:"description"`
	Location     geo.Location      `json:"location"`
	Availability bool              `json:"availability"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Candidate adapts r for the matcher.
func (r Resource) Candidate() matching.Candidate {
	return matching.Candidate{
		ID:        string(r.ID),
		Category:  r.Type,
		Available: r.Availability,
		Location:  r.Location,
	}
}

type CreateResourceInput struct {
	Type        models.Category `json:"type"`
	Description string          `json:"description"`
	// nil means available
	Availability *bool         `json:"availability,omitempty"`
	Location     geocode.Input `json:"location"`
}

func (in *CreateResourceInput) Trim() {
	in.Type = models.Category(strings.ToUpper(strings.TrimSpace(string(in.Type))))
	in.Description = strings.TrimSpace(in.Description)
	in.Location.Address = strings.TrimSpace(in.Location.Address)
}

type ListResourcesInput struct {
	Type          models.Category `json:"type,omitempty"`
	AvailableOnly bool            `json:"availableOnly,omitempty"`
	UserID        string          `json:"userId,omitempty"`
	Query         string          `json:"q,omitempty"`
	Limit         int             `json:"limit,omitempty"`
}

type UpdateAvailabilityInput struct {
	Availability bool `json:"availability"`
}

const maxDescription = 2000
