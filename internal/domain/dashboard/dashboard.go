// Package dashboard pairs open requests with nearby available resources.
package dashboard

import (
	"context"
	"fmt"
	"math"

	"reliefmatch/backend/internal/domain/matching"
	"reliefmatch/backend/internal/domain/request"
	"reliefmatch/backend/internal/domain/resource"
	"reliefmatch/backend/internal/models"
)

var ErrBadRequest = request.ErrBadRequest

type Requests interface {
	Get(ctx context.Context, id models.RequestID) (*request.EmergencyRequest, error)
	List(ctx context.Context, in request.ListRequestsInput) ([]request.EmergencyRequest, error)
}

type Resources interface {
	Available(ctx context.Context, c models.Category) ([]resource.Resource, error)
}

type Candidate struct {
	Resource   resource.Resource `json:"resource"`
	DistanceKm float64           `json:"distanceKm"`
}

type Entry struct {
	Request    request.EmergencyRequest `json:"request"`
	Candidates []Candidate              `json:"candidates"`
}

type Service struct {
	requests  Requests
	resources Resources
	matcher   matching.Matcher
}

func NewService(requests Requests, resources Resources, m matching.Matcher) *Service {
	return &Service{requests: requests, resources: resources, matcher: m}
}

// Build lists requests of the given category ("" or ALL for every category)
// newest first, each with its ranked candidates. Resources are read once per
// call; nothing is cached between calls.
func (s *Service) Build(ctx context.Context, category string) ([]Entry, error) {
	c, ok := models.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadRequest, category)
	}

	reqs, err := s.requests.List(ctx, request.ListRequestsInput{Type: c})
	if err != nil {
		return nil, err
	}
	pool, err := s.resources.Available(ctx, c)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, Entry{Request: r, Candidates: s.rank(r, pool)})
	}
	return out, nil
}

// Candidates ranks available resources for one request.
func (s *Service) Candidates(ctx context.Context, id models.RequestID) ([]Candidate, error) {
	r, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pool, err := s.resources.Available(ctx, r.Type)
	if err != nil {
		return nil, err
	}
	return s.rank(*r, pool), nil
}

func (s *Service) rank(r request.EmergencyRequest, pool []resource.Resource) []Candidate {
	byID := make(map[string]resource.Resource, len(pool))
	cands := make([]matching.Candidate, 0, len(pool))
	for _, res := range pool {
		byID[string(res.ID)] = res
		cands = append(cands, res.Candidate())
	}

	ranked := s.matcher.Rank(matching.Target{Category: r.Type, Location: r.Location}, cands)
	out := make([]Candidate, 0, len(ranked))
	for _, rk := range ranked {
		out = append(out, Candidate{Resource: byID[rk.Candidate.ID], DistanceKm: round1(rk.DistanceKm)})
	}
	return out
}

// round1 matches the one-decimal distances shown in the UI.
func round1(km float64) float64 {
	return math.Round(km*10) / 10
}
