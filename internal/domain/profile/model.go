package profile

import (
	"fmt"
	"strings"
	"time"

	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/utils"
)

// PhonePlaceholder is stored when neither the form nor the auth record
// carries a phone number.
const PhonePlaceholder = "N/A"

const (
	maxPhone = 20
	maxName  = 120
)

// UserProfile is keyed by the auth uid.
type UserProfile struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Phone      string      `json:"phone"`
	IsVerified bool        `json:"isVerified"`
	Role       models.Role `json:"role"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

type CreateProfileInput struct {
	Name  string      `json:"name"`
	Phone string      `json:"phone,omitempty"`
	Role  models.Role `json:"role,omitempty"`
}

func (in *CreateProfileInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = models.Role(strings.ToUpper(strings.TrimSpace(string(in.Role))))
}

// UpdateProfileInput represents input for updating a profile
type UpdateProfileInput struct {
	Name  *string      `json:"name,omitempty"`
	Phone *string      `json:"phone,omitempty"`
	Role  *models.Role `json:"role,omitempty"`
}

func (in *UpdateProfileInput) Trim() {
	if in.Name != nil {
		*in.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		*in.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		*in.Role = models.Role(strings.ToUpper(strings.TrimSpace(string(*in.Role))))
	}
}

// NormalizePhone falls back to the placeholder and caps the length.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return PhonePlaceholder
	}
	return utils.TrimMax(phone, maxPhone)
}

// checkRole validates a self-chosen role. ADMIN is only granted by another
// admin or through cmd/set-claims.
func checkRole(r models.Role, actorIsAdmin bool) error {
	if !r.Valid() {
		return fmt.Errorf("%w: role must be HELPER or SEEKER", ErrBadRequest)
	}
	if r == models.RoleAdmin && !actorIsAdmin {
		return fmt.Errorf("%w: ADMIN cannot be self-assigned", ErrUnauthorized)
	}
	return nil
}
