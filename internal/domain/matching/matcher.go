// Package matching ranks candidate resources against an emergency request.
package matching

import (
	"sort"

	"reliefmatch/backend/internal/domain/geo"
	"reliefmatch/backend/internal/models"
)

// DefaultRadiusKm is used when a Matcher has no positive radius.
const DefaultRadiusKm = 25.0

// Target is the record candidates are matched against.
type Target struct {
	Category models.Category
	Location geo.Location
}

// Candidate is anything that can be paired with a Target.
type Candidate struct {
	ID        string
	Category  models.Category
	Available bool
	Location  geo.Location
}

// Ranked is an eligible candidate with its distance from the target.
type Ranked struct {
	Candidate  Candidate
	DistanceKm float64
}

// Matcher is stateless; callers re-run it whenever their collections change.
type Matcher struct {
	RadiusKm float64
}

func New(radiusKm float64) Matcher {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return Matcher{RadiusKm: radiusKm}
}

func (m Matcher) radius() float64 {
	if m.RadiusKm <= 0 {
		return DefaultRadiusKm
	}
	return m.RadiusKm
}

// Rank returns the candidates with the target's category, availability set and
// distance <= radius, nearest first. Ties keep input order.
//
// Candidates with malformed coordinates are skipped. A malformed target
// matches nothing.
func (m Matcher) Rank(target Target, candidates []Candidate) []Ranked {
	out := []Ranked{}
	if !target.Location.Valid() {
		return out
	}

	radius := m.radius()
	for _, c := range candidates {
		if c.Category != target.Category || !c.Available {
			continue
		}
		if !c.Location.Valid() {
			continue
		}
		d := geo.Distance(target.Location, c.Location)
		if d > radius {
			continue
		}
		out = append(out, Ranked{Candidate: c, DistanceKm: d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}
