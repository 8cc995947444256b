package request

import (
	"context"
	"fmt"
	"log"

	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/storeerr"
	"reliefmatch/backend/internal/utils"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) col() *firestore.CollectionRef {
	return r.fs.Collection(models.ColRequests)
}

// Create stores req under a new document id and returns it with the
// store-assigned id and timestamps filled in.
func (r *Repo) Create(ctx context.Context, req EmergencyRequest) (*EmergencyRequest, error) {
	d, err := toDoc(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	ref := r.col().NewDoc()
	wr, err := ref.Create(ctx, d)
	if err != nil {
		return nil, storeerr.Wrap("create request", err)
	}
	req.ID = models.RequestID(ref.ID)
	req.CreatedAt = wr.UpdateTime
	req.UpdatedAt = wr.UpdateTime
	return &req, nil
}

func (r *Repo) Get(ctx context.Context, id models.RequestID) (*EmergencyRequest, error) {
	snap, err := r.col().Doc(string(id)).Get(ctx)
	if err != nil {
		return nil, storeerr.Wrap("get request", err)
	}
	req, err := FromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requests newest first. Documents that fail to decode are
// skipped and logged.
func (r *Repo) List(ctx context.Context, in ListRequestsInput) ([]EmergencyRequest, error) {
	q := r.col().Query
	if in.Type != "" {
		q = q.Where("type", "==", string(in.Type))
	}
	if in.Status != "" {
		q = q.Where("status", "==", string(in.Status))
	}
	if in.UserID != "" {
		q = q.Where("userId", "==", in.UserID)
	}
	if kw := utils.Keywords(in.Query); len(kw) > 0 {
		q = q.Where("keywords", "array-contains", kw[0])
	}

	limit := in.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	iter := q.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx)
	defer iter.Stop()

	out := []EmergencyRequest{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeerr.Wrap("list requests", err)
		}
		req, err := FromSnapshot(snap)
		if err != nil {
			log.Printf("[request] skipping malformed document: %v", err)
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

// Reopen moves a request back to PENDING and releases its PENDING matches in
// the same transaction, so reconciliation does not read the pair as a
// half-applied match and flip the request back.
func (r *Repo) Reopen(ctx context.Context, id models.RequestID) (*EmergencyRequest, error) {
	ref := r.col().Doc(string(id))
	matches := r.fs.Collection(models.ColMatches).
		Where("requestId", "==", string(id)).
		Where("status", "==", string(models.MatchPending))

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		snaps, err := tx.Documents(matches).GetAll()
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			if err := tx.Update(snap.Ref, []firestore.Update{
				{Path: "status", Value: string(models.MatchReleased)},
			}); err != nil {
				return err
			}
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(models.StatusPending)},
		})
	})
	if err != nil {
		return nil, storeerr.Wrap("reopen request", err)
	}
	return r.Get(ctx, id)
}

func (r *Repo) UpdateStatus(ctx context.Context, id models.RequestID, status models.RequestStatus) (*EmergencyRequest, error) {
	_, err := r.col().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(status)},
	})
	if err != nil {
		return nil, storeerr.Wrap("update request status", err)
	}
	return r.Get(ctx, id)
}
