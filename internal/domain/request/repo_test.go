package request

import (
	"context"
	"testing"

	"reliefmatch/backend/internal/domain/geo"
	"reliefmatch/backend/internal/fstest"
	"reliefmatch/backend/internal/models"

	"cloud.google.com/go/firestore"
)

func TestRepoCreateGetUpdate(t *testing.T) {
	repo := NewRepo(fstest.Client(t))
	ctx := context.Background()

	in := EmergencyRequest{
		UserID:      "seeker-repo",
		Type:        models.CategoryMedical,
		Description: "insulin needed",
		Location:    geo.Location{Lat: 35.6762, Lng: 139.6503, Address: "東京都"},
		Status:      models.StatusPending,
		Priority:    models.PriorityHigh,
	}
	created, err := repo.Create(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("store did not assign id/timestamps: %+v", created)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Location != in.Location || got.Priority != in.Priority {
		t.Errorf("got %+v", got)
	}

	updated, err := repo.UpdateStatus(ctx, created.ID, models.StatusCompleted)
	if err != nil || updated.Status != models.StatusCompleted {
		t.Fatalf("update: %+v %v", updated, err)
	}

	list, err := repo.List(ctx, ListRequestsInput{UserID: "seeker-repo", Query: "insulin"})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, r := range list {
		found = found || r.ID == created.ID
	}
	if !found {
		t.Error("created request missing from keyword listing")
	}

	if _, err := repo.Get(ctx, "does-not-exist"); !IsErrNotFound(err) {
		t.Errorf("missing doc: %v", err)
	}
}

func TestRepoListSkipsMalformedLocation(t *testing.T) {
	fs := fstest.Client(t)
	repo := NewRepo(fs)
	ctx := context.Background()

	ref := fs.Collection(models.ColRequests).NewDoc()
	if _, err := ref.Create(ctx, map[string]interface{}{
		"userId":    "seeker-bad",
		"type":      "FOOD",
		"status":    "PENDING",
		"location":  "not json",
		"createdAt": firestore.ServerTimestamp,
	}); err != nil {
		t.Fatal(err)
	}

	list, err := repo.List(ctx, ListRequestsInput{UserID: "seeker-bad"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range list {
		if r.ID == models.RequestID(ref.ID) {
			t.Error("malformed document was listed")
		}
	}
}
