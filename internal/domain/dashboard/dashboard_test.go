package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"reliefmatch/backend/internal/domain/geo"
	"reliefmatch/backend/internal/domain/matching"
	"reliefmatch/backend/internal/domain/request"
	"reliefmatch/backend/internal/domain/resource"
	"reliefmatch/backend/internal/models"
)

type fakeRequests []request.EmergencyRequest

func (f fakeRequests) Get(_ context.Context, id models.RequestID) (*request.EmergencyRequest, error) {
	for _, r := range f {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, request.ErrNotFound
}

func (f fakeRequests) List(_ context.Context, in request.ListRequestsInput) ([]request.EmergencyRequest, error) {
	out := []request.EmergencyRequest{}
	for _, r := range f {
		if in.Type == "" || r.Type == in.Type {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeResources ignores the filters so the matcher does the filtering.
type fakeResources []resource.Resource

func (f fakeResources) Available(context.Context, models.Category) ([]resource.Resource, error) {
	return f, nil
}

func at(lat, lng float64) geo.Location { return geo.Location{Lat: lat, Lng: lng, Address: "somewhere"} }

func fixture() *Service {
	reqs := fakeRequests{
		{ID: "food", Type: models.CategoryFood, Location: at(0, 0), Status: models.StatusPending},
		{ID: "med", Type: models.CategoryMedical, Location: at(10, 10), Status: models.StatusPending},
	}
	pool := fakeResources{
		{ID: "A", Type: models.CategoryFood, Availability: true, Location: at(0, 0.05)},
		{ID: "B", Type: models.CategoryFood, Availability: true, Location: at(0, 5)},
		{ID: "C", Type: models.CategoryMedical, Availability: true, Location: at(0, 0.01)},
		{ID: "D", Type: models.CategoryFood, Availability: false, Location: at(0, 0.01)},
	}
	return NewService(reqs, pool, matching.New(25))
}

func TestBuildFiltersByType(t *testing.T) {
	svc := fixture()
	entries, err := svc.Build(context.Background(), "food")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Request.ID != "food" {
		t.Fatalf("entries = %+v", entries)
	}
	c := entries[0].Candidates
	if len(c) != 1 || c[0].Resource.ID != "A" || c[0].DistanceKm != 5.6 {
		t.Errorf("candidates = %+v", c)
	}

	all, err := svc.Build(context.Background(), "")
	if err != nil || len(all) != 2 {
		t.Fatalf("ALL: %d %v", len(all), err)
	}
	if all[1].Candidates == nil || len(all[1].Candidates) != 0 {
		t.Errorf("far medical request should have an empty, non-nil candidate list: %+v", all[1].Candidates)
	}
}

func TestBuildRejectsUnknownType(t *testing.T) {
	if _, err := fixture().Build(context.Background(), "boats"); !errors.Is(err, ErrBadRequest) {
		t.Errorf("err = %v", err)
	}
}

func TestCandidates(t *testing.T) {
	svc := fixture()
	c, err := svc.Candidates(context.Background(), "food")
	if err != nil || len(c) != 1 {
		t.Fatalf("%+v %v", c, err)
	}
	if _, err := svc.Candidates(context.Background(), "missing"); !errors.Is(err, request.ErrNotFound) {
		t.Errorf("missing: %v", err)
	}
}

// A large pool is ranked whole: the nearest resource sits at the very end.
func TestCandidatesUseWholePool(t *testing.T) {
	pool := make(fakeResources, 0, 1201)
	for i := 0; i < 1200; i++ {
		pool = append(pool, resource.Resource{
			ID: models.ResourceID(fmt.Sprintf("far%d", i)), Type: models.CategoryFood,
			Availability: true, Location: at(0, 0.2),
		})
	}
	pool = append(pool, resource.Resource{ID: "nearest", Type: models.CategoryFood, Availability: true, Location: at(0, 0.001)})
	svc := NewService(fakeRequests{{ID: "food", Type: models.CategoryFood, Location: at(0, 0)}}, pool, matching.New(25))

	c, err := svc.Candidates(context.Background(), "food")
	if err != nil {
		t.Fatal(err)
	}
	if len(c) != 1201 {
		t.Fatalf("got %d candidates, want 1201", len(c))
	}
	if c[0].Resource.ID != "nearest" {
		t.Errorf("first candidate = %q", c[0].Resource.ID)
	}
}
