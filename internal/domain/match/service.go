package match

import (
	"context"
	"fmt"
	"log"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/push"
)

// Store is implemented by *Repo.
type Store interface {
	CreateWithTransition(ctx context.Context, m Match) (*Match, error)
	Get(ctx context.Context, id models.MatchID) (*Match, error)
	List(ctx context.Context, in ListMatchesInput) ([]Match, error)
	All(ctx context.Context) ([]Match, error)
	RequestStatus(ctx context.Context, id models.RequestID) (models.RequestStatus, error)
	MarkMatched(ctx context.Context, id models.RequestID) (bool, error)
}

type Service struct {
	store Store
	push  *push.Publisher
}

func NewService(store Store, pub *push.Publisher) *Service {
	return &Service{store: store, push: pub}
}

// Create pairs a request with a resource and notifies the requester.
func (s *Service) Create(ctx context.Context, actor *authctx.Session, in CreateMatchInput) (*Match, error) {
	if actor == nil || actor.UID == "" {
		return nil, fmt.Errorf("%w: sign in required", ErrUnauthorized)
	}
	in.Trim()
	if in.RequestID == "" || in.ResourceID == "" {
		return nil, fmt.Errorf("%w: requestId and resourceId are required", ErrBadRequest)
	}

	m, err := s.store.CreateWithTransition(ctx, Match{
		RequestID:  in.RequestID,
		ResourceID: in.ResourceID,
		Status:     models.MatchPending,
		CreatedBy:  actor.UID,
	})
	if err != nil {
		return nil, err
	}

	if m.RequesterID != "" {
		s.push.Publish(ctx, push.UserTopic(m.RequesterID),
			"Help is on the way",
			"Your request was matched with an available resource.",
			map[string]string{"matchId": string(m.ID), "requestId": string(m.RequestID)})
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id models.MatchID) (*Match, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: matchId is required", ErrBadRequest)
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, in ListMatchesInput) ([]Match, error) {
	return s.store.List(ctx, in)
}

// Reconcile finds PENDING matches whose request was left PENDING (a
// half-applied two-write pair) and moves those requests to MATCHED. Released
// matches are skipped. Matches pointing at a deleted request are counted as
// orphaned and left alone.
func (s *Service) Reconcile(ctx context.Context) (Report, error) {
	rep := Report{RepairedIDs: []models.RequestID{}}

	all, err := s.store.All(ctx)
	if err != nil {
		return rep, err
	}

	seen := make(map[models.RequestID]bool, len(all))
	for _, m := range all {
		rep.Scanned++
		if m.Status != models.MatchPending || seen[m.RequestID] {
			continue
		}
		seen[m.RequestID] = true

		st, err := s.store.RequestStatus(ctx, m.RequestID)
		if IsErrNotFound(err) {
			rep.Orphaned++
			log.Printf("[match] match %s references missing request %s", m.ID, m.RequestID)
			continue
		}
		if err != nil {
			return rep, err
		}
		if st != models.StatusPending {
			continue
		}

		changed, err := s.store.MarkMatched(ctx, m.RequestID)
		if err != nil {
			return rep, err
		}
		if changed {
			rep.Repaired++
			rep.RepairedIDs = append(rep.RepairedIDs, m.RequestID)
		}
	}

	if rep.Repaired > 0 || rep.Orphaned > 0 {
		log.Printf("[match] reconcile: scanned=%d repaired=%d orphaned=%d", rep.Scanned, rep.Repaired, rep.Orphaned)
	}
	return rep, nil
}
