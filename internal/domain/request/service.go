package request

import (
	"context"
	"fmt"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/domain/geo"
	"reliefmatch/backend/internal/geocode"
	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/push"
)

// Store is implemented by *Repo.
type Store interface {
	Create(ctx context.Context, req EmergencyRequest) (*EmergencyRequest, error)
	Get(ctx context.Context, id models.RequestID) (*EmergencyRequest, error)
	List(ctx context.Context, in ListRequestsInput) ([]EmergencyRequest, error)
	UpdateStatus(ctx context.Context, id models.RequestID, status models.RequestStatus) (*EmergencyRequest, error)
	Reopen(ctx context.Context, id models.RequestID) (*EmergencyRequest, error)
}

type Service struct {
	store    Store
	geocoder geocode.Geocoder
	push     *push.Publisher
}

func NewService(store Store, geocoder geocode.Geocoder, pub *push.Publisher) *Service {
	return &Service{store: store, geocoder: geocoder, push: pub}
}

// Create posts a new PENDING request for the caller.
func (s *Service) Create(ctx context.Context, actor *authctx.Session, in CreateRequestInput) (*EmergencyRequest, error) {
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
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("%w: priority must be one of HIGH, MEDIUM, LOW", ErrBadRequest)
	}

	loc, err := resolveLocation(ctx, s.geocoder, in.Location)
	if err != nil {
		return nil, err
	}

	out, err := s.store.Create(ctx, EmergencyRequest{
		UserID:      actor.UID,
		Type:        in.Type,
		Description: in.Description,
		Location:    loc,
		Status:      models.StatusPending,
		Priority:    in.Priority,
	})
	if err != nil {
		return nil, err
	}

	s.push.Publish(ctx, push.RequestsTopic(out.Type),
		fmt.Sprintf("New %s request", out.Type),
		fmt.Sprintf("%s priority - %s", out.Priority, out.Location.Address),
		map[string]string{"requestId": string(out.ID)})

	return out, nil
}

func (s *Service) Get(ctx context.Context, id models.RequestID) (*EmergencyRequest, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: requestId is required", ErrBadRequest)
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, in ListRequestsInput) ([]EmergencyRequest, error) {
	if in.Type != "" && !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadRequest, in.Type)
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadRequest, in.Status)
	}
	return s.store.List(ctx, in)
}

// UpdateStatus lets the requester (or an admin) close a request. MATCHED is
// only ever set by match creation; only admins may reopen to PENDING, which
// also releases the request's matches.
func (s *Service) UpdateStatus(ctx context.Context, actor *authctx.Session, id models.RequestID, status models.RequestStatus) (*EmergencyRequest, error) {
	if actor == nil || actor.UID == "" {
		return nil, fmt.Errorf("%w: sign in required", ErrUnauthorized)
	}
	switch status {
	case models.StatusCompleted:
	case models.StatusPending:
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: only admins can reopen a request", ErrUnauthorized)
		}
	default:
		return nil, fmt.Errorf("%w: status can only be set to COMPLETED or PENDING", ErrBadRequest)
	}

	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.UserID != actor.UID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only the requester can update this request", ErrUnauthorized)
	}
	if cur.Status == status {
		return cur, nil
	}
	if status == models.StatusPending {
		return s.store.Reopen(ctx, id)
	}
	return s.store.UpdateStatus(ctx, id, status)
}

func resolveLocation(ctx context.Context, g geocode.Geocoder, in geocode.Input) (geo.Location, error) {
	loc, err := geocode.Resolve(ctx, g, in)
	if geocode.IsInputError(err) {
		return geo.Location{}, fmt.Errorf("%w: location: %v", ErrBadRequest, err)
	}
	return loc, err
}
