package resource

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
	return r.fs.Collection(models.ColResources)
}

func (r *Repo) Create(ctx context.Context, res Resource) (*Resource, error) {
	d, err := toDoc(res)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	ref := r.col().NewDoc()
	wr, err := ref.Create(ctx, d)
	if err != nil {
		return nil, storeerr.Wrap("create resource", err)
	}
	res.ID = models.ResourceID(ref.ID)
	res.CreatedAt = wr.UpdateTime
	res.UpdatedAt = wr.UpdateTime
	return &res, nil
}

func (r *Repo) Get(ctx context.Context, id models.ResourceID) (*Resource, error) {
	snap, err := r.col().Doc(string(id)).Get(ctx)
	if err != nil {
		return nil, storeerr.Wrap("get resource", err)
	}
	res, err := FromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// List returns resources newest first, skipping documents that fail to decode.
func (r *Repo) List(ctx context.Context, in ListResourcesInput) ([]Resource, error) {
	q := r.col().Query
	if in.Type != "" {
		q = q.Where("type", "==", string(in.Type))
	}
	if in.AvailableOnly {
		q = q.Where("availability", "==", true)
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

	return collect(q.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx), "list resources")
}

// Available streams every available resource of category c ("" for all),
// with no page cap. The iterator fetches in batches as it goes.
func (r *Repo) Available(ctx context.Context, c models.Category) ([]Resource, error) {
	q := r.col().Where("availability", "==", true)
	if c != "" {
		q = q.Where("type", "==", string(c))
	}
	return collect(q.Documents(ctx), "scan available resources")
}

func collect(iter *firestore.DocumentIterator, op string) ([]Resource, error) {
	defer iter.Stop()
	out := []Resource{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeerr.Wrap(op, err)
		}
		res, err := FromSnapshot(snap)
		if err != nil {
			log.Printf("[resource] skipping malformed document: %v", err)
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *Repo) UpdateAvailability(ctx context.Context, id models.ResourceID, available bool) (*Resource, error) {
	_, err := r.col().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "availability", Value: available},
	})
	if err != nil {
		return nil, storeerr.Wrap("update resource availability", err)
	}
	return r.Get(ctx, id)
}
