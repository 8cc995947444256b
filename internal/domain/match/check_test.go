package match

import (
	"errors"
	"testing"

	"reliefmatch/backend/internal/domain/request"
	"reliefmatch/backend/internal/domain/resource"
	"reliefmatch/backend/internal/models"
)

func TestCheckPair(t *testing.T) {
	pending := &request.EmergencyRequest{ID: "r1", Type: models.CategoryFood, Status: models.StatusPending}
	available := &resource.Resource{ID: "s1", Type: models.CategoryFood, Availability: true}

	tests := []struct {
		name string
		req  *request.EmergencyRequest
		res  *resource.Resource
		want error
	}{
		{"ok", pending, available, nil},
		{"missing request", nil, available, ErrNotFound},
		{"missing resource", pending, nil, ErrNotFound},
		{"category mismatch", pending, &resource.Resource{Type: models.CategoryShelter, Availability: true}, ErrBadRequest},
		{"unavailable", pending, &resource.Resource{Type: models.CategoryFood}, ErrConflict},
		{"already matched", &request.EmergencyRequest{Type: models.CategoryFood, Status: models.StatusMatched}, available, ErrConflict},
		{"completed", &request.EmergencyRequest{Type: models.CategoryFood, Status: models.StatusCompleted}, available, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPair(tt.req, tt.res)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
