package resource

import (
	"context"
	"fmt"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/geocode"
	"reliefmatch/backend/internal/models"
)

// Store is implemented by *Repo.
type Store interface {
	Create(ctx context.Context, res Resource) (*Resource, error)
	Get(ctx context.Context, id models.ResourceID) (*Resource, error)
	List(ctx context.Context, in ListResourcesInput) ([]Resource, error)
	Available(ctx context.Context, c models.Category) ([]Resource, error)
	UpdateAvailability(ctx context.Context, id models.ResourceID, available bool) (*Resource, error)
}

type Service struct {
	store    Store
	geocoder geocode.Geocoder
}

func NewService(store Store, geocoder geocode.Geocoder) *Service {
	return &Service{store: store, geocoder: geocoder}
}

// Create offers a new resource on behalf of the caller. Availability
// defaults to true.
func (s *Service) Create(ctx context.Context, actor *authctx.Session, in CreateResourceInput) (*Resource, error) {
	if actor == nil || actor.UID == "" {
		return nil, fmt.Errorf("%w: sign in required", ErrUnauthorized)
	}
	in.Trim()

	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: type must be one of MEDICAL, SHELTER, FOOD, TRANSPORT", ErrBadRequest)
	}
	if in.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrBadRequest)
	}
	if len(in.Description) > maxDescription {
		return nil, fmt.Errorf("%w: description is too long", ErrBadRequest)
	}

	loc, err := geocode.Resolve(ctx, s.geocoder, in.Location)
	if geocode.IsInputError(err) {
		return nil, fmt.Errorf("%w: location: %v", ErrBadRequest, err)
	}
	if err != nil {
		return nil, err
	}

	available := true
	if in.Availability != nil {
		available = *in.Availability
	}

	return s.store.Create(ctx, Resource{
		UserID:       actor.UID,
		Type:         in.Type,
		Description:  in.Description,
		Location:     loc,
		Availability: available,
	})
}

func (s *Service) Get(ctx context.Context, id models.ResourceID) (*Resource, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: resourceId is required", ErrBadRequest)
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, in ListResourcesInput) ([]Resource, error) {
	if in.Type != "" && !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadRequest, in.Type)
	}
	return s.store.List(ctx, in)
}

// Available returns the whole matching pool for category c ("" for all).
func (s *Service) Available(ctx context.Context, c models.Category) ([]Resource, error) {
	if c != "" && !c.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadRequest, c)
	}
	return s.store.Available(ctx, c)
}

// SetAvailability is restricted to the offering helper and admins.
func (s *Service) SetAvailability(ctx context.Context, actor *authctx.Session, id models.ResourceID, available bool) (*Resource, error) {
	if actor == nil || actor.UID == "" {
		return nil, fmt.Errorf("%w: sign in required", ErrUnauthorized)
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.UserID != actor.UID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only the owner can change availability", ErrUnauthorized)
	}
	if cur.Availability == available {
		return cur, nil
	}
	return s.store.UpdateAvailability(ctx, id, available)
}
