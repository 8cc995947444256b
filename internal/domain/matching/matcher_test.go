package matching

import (
	"math"
	"math/rand"
	"testing"

	"reliefmatch/backend/internal/domain/geo"
	"reliefmatch/backend/internal/models"
)

func TestRankScenario(t *testing.T) {
	target := Target{Category: models.CategoryFood, Location: geo.Location{}}
	candidates := []Candidate{
		{ID: "A", Category: models.CategoryFood, Available: true, Location: geo.Location{Lng: 0.05}},
		{ID: "B", Category: models.CategoryFood, Available: true, Location: geo.Location{Lng: 5}},
		{ID: "C", Category: models.CategoryMedical, Available: true, Location: geo.Location{Lng: 0.01}},
	}

	got := New(25).Rank(target, candidates)
	if len(got) != 1 || got[0].Candidate.ID != "A" {
		t.Fatalf("Rank = %+v, want only A", got)
	}
	if math.Abs(got[0].DistanceKm-5.56) > 0.01 {
		t.Errorf("distance to A = %v, want ~5.56", got[0].DistanceKm)
	}
}

func TestRankEmptyIsNotNil(t *testing.T) {
	got := New(10).Rank(Target{Category: models.CategoryShelter}, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("Rank(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestRankSortsByDistanceStable(t *testing.T) {
	target := Target{Category: models.CategoryTransport, Location: geo.Location{Lat: 10, Lng: 10}}
	candidates := []Candidate{
		{ID: "far", Category: models.CategoryTransport, Available: true, Location: geo.Location{Lat: 10.1, Lng: 10}},
		{ID: "tie1", Category: models.CategoryTransport, Available: true, Location: geo.Location{Lat: 10, Lng: 10.05}},
		{ID: "near", Category: models.CategoryTransport, Available: true, Location: geo.Location{Lat: 10, Lng: 10}},
		{ID: "tie2", Category: models.CategoryTransport, Available: true, Location: geo.Location{Lat: 10, Lng: 10.05}},
	}

	got := New(25).Rank(target, candidates)
	want := []string{"near", "tie1", "tie2", "far"}
	if len(got) != len(want) {
		t.Fatalf("Rank len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].Candidate.ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].Candidate.ID, id)
		}
	}
}

func TestRankRadiusIsInclusiveAndConfigurable(t *testing.T) {
	target := Target{Category: models.CategoryFood}
	c := Candidate{ID: "x", Category: models.CategoryFood, Available: true, Location: geo.Location{Lng: 0.15}}
	d := geo.Distance(target.Location, c.Location)

	if got := (Matcher{RadiusKm: d}).Rank(target, []Candidate{c}); len(got) != 1 {
		t.Errorf("candidate exactly at radius excluded")
	}
	if got := New(10).Rank(target, []Candidate{c}); len(got) != 0 {
		t.Errorf("candidate at %.1f km included with 10 km radius", d)
	}
	if got := New(0).Rank(target, []Candidate{c}); len(got) != 1 {
		t.Errorf("default radius should be %v km", DefaultRadiusKm)
	}
}

func TestRankSkipsMalformedCoordinates(t *testing.T) {
	target := Target{Category: models.CategoryMedical}
	candidates := []Candidate{
		{ID: "nan", Category: models.CategoryMedical, Available: true, Location: geo.Location{Lat: math.NaN()}},
		{ID: "range", Category: models.CategoryMedical, Available: true, Location: geo.Location{Lat: 95}},
		{ID: "ok", Category: models.CategoryMedical, Available: true, Location: geo.Location{Lat: 0.01}},
	}
	got := New(25).Rank(target, candidates)
	if len(got) != 1 || got[0].Candidate.ID != "ok" {
		t.Fatalf("Rank = %+v, want only ok", got)
	}

	bad := Target{Category: models.CategoryMedical, Location: geo.Location{Lng: math.Inf(1)}}
	if got := New(25).Rank(bad, candidates); len(got) != 0 {
		t.Errorf("malformed target matched %d candidates", len(got))
	}
}

func TestRankNeverReturnsWrongCategoryOrUnavailable(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		target := Target{
			Category: models.Categories[r.Intn(len(models.Categories))],
			Location: geo.Location{Lat: r.Float64()*2 - 1, Lng: r.Float64()*2 - 1},
		}
		candidates := make([]Candidate, 30)
		for i := range candidates {
			candidates[i] = Candidate{
				Category:  models.Categories[r.Intn(len(models.Categories))],
				Available: r.Intn(2) == 0,
				Location:  geo.Location{Lat: r.Float64()*2 - 1, Lng: r.Float64()*2 - 1},
			}
		}

		got := New(50).Rank(target, candidates)
		for i, rc := range got {
			if rc.Candidate.Category != target.Category {
				t.Fatalf("round %d: wrong category %s for target %s", round, rc.Candidate.Category, target.Category)
			}
			if !rc.Candidate.Available {
				t.Fatalf("round %d: unavailable candidate returned", round)
			}
			if rc.DistanceKm > 50 {
				t.Fatalf("round %d: distance %v beyond radius", round, rc.DistanceKm)
			}
			if i > 0 && got[i-1].DistanceKm > rc.DistanceKm {
				t.Fatalf("round %d: not sorted", round)
			}
		}
	}
}
