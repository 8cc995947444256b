package match

import (
	"context"
	"fmt"
	"log"

	"reliefmatch/backend/internal/domain/request"
	"reliefmatch/backend/internal/domain/resource"
	"reliefmatch/backend/internal/models"
	"reliefmatch/backend/internal/storeerr"

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
	return r.fs.Collection(models.ColMatches)
}

func (r *Repo) requestRef(id models.RequestID) *firestore.DocumentRef {
	return r.fs.Collection(models.ColRequests).Doc(string(id))
}

// CreateWithTransition writes the match and moves the request to MATCHED in
// one transaction. Both records are re-read inside the transaction, so a
// request matched concurrently is rejected with ErrConflict.
func (r *Repo) CreateWithTransition(ctx context.Context, m Match) (*Match, error) {
	matchRef := r.col().NewDoc()
	reqRef := r.requestRef(m.RequestID)
	resRef := r.fs.Collection(models.ColResources).Doc(string(m.ResourceID))

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		reqSnap, err := tx.Get(reqRef)
		if err != nil {
			return storeerr.Wrap("read request "+string(m.RequestID), err)
		}
		resSnap, err := tx.Get(resRef)
		if err != nil {
			return storeerr.Wrap("read resource "+string(m.ResourceID), err)
		}
		req, err := request.FromSnapshot(reqSnap)
		if err != nil {
			return err
		}
		res, err := resource.FromSnapshot(resSnap)
		if err != nil {
			return err
		}
		if err := CheckPair(&req, &res); err != nil {
			return err
		}

		m.RequesterID = req.UserID
		m.HelperID = res.UserID
		if err := tx.Create(matchRef, toDoc(m)); err != nil {
			return err
		}
		return tx.Update(reqRef, []firestore.Update{
			{Path: "status", Value: string(models.StatusMatched)},
		})
	})
	if err != nil {
		return nil, storeerr.Wrap("create match", err)
	}
	return r.Get(ctx, models.MatchID(matchRef.ID))
}

// pairWriter is the two independent writes behind InsertPair.
type pairWriter interface {
	createMatch(ctx context.Context, m Match) (models.MatchID, error)
	setMatched(ctx context.Context, id models.RequestID) error
}

// InsertPair is the unguarded two-write path: the match is stored, then the
// request is set to MATCHED whatever its current status. If the second write
// fails the match stays behind and Reconcile repairs the request later.
// Only operator tooling should call it; use CreateWithTransition otherwise.
func (r *Repo) InsertPair(ctx context.Context, m Match) (*Match, error) {
	id, err := insertPair(ctx, r, m)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func insertPair(ctx context.Context, w pairWriter, m Match) (models.MatchID, error) {
	if m.Status == "" {
		m.Status = models.MatchPending
	}
	id, err := w.createMatch(ctx, m)
	if err != nil {
		return "", storeerr.Wrap("insert match", err)
	}
	if err := w.setMatched(ctx, m.RequestID); err != nil {
		log.Printf("[match] match %s written but request %s not transitioned: %v", id, m.RequestID, err)
		return id, storeerr.Wrap("transition request "+string(m.RequestID), err)
	}
	return id, nil
}

func (r *Repo) createMatch(ctx context.Context, m Match) (models.MatchID, error) {
	ref := r.col().NewDoc()
	if _, err := ref.Create(ctx, toDoc(m)); err != nil {
		return "", err
	}
	return models.MatchID(ref.ID), nil
}

func (r *Repo) setMatched(ctx context.Context, id models.RequestID) error {
	_, err := r.requestRef(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(models.StatusMatched)},
	})
	return err
}

func (r *Repo) Get(ctx context.Context, id models.MatchID) (*Match, error) {
	snap, err := r.col().Doc(string(id)).Get(ctx)
	if err != nil {
		return nil, storeerr.Wrap("get match", err)
	}
	m, err := FromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) List(ctx context.Context, in ListMatchesInput) ([]Match, error) {
	q := r.col().Query
	if in.RequestID != "" {
		q = q.Where("requestId", "==", string(in.RequestID))
	}
	if in.ResourceID != "" {
		q = q.Where("resourceId", "==", string(in.ResourceID))
	}
	limit := in.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return r.collect(q.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx), "list matches")
}

// All returns every stored match; used by reconciliation.
func (r *Repo) All(ctx context.Context) ([]Match, error) {
	return r.collect(r.col().Documents(ctx), "scan matches")
}

func (r *Repo) collect(iter *firestore.DocumentIterator, op string) ([]Match, error) {
	defer iter.Stop()
	out := []Match{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeerr.Wrap(op, err)
		}
		m, err := FromSnapshot(snap)
		if err != nil {
			log.Printf("[match] skipping malformed document: %v", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// RequestStatus reads only the status field so requests with a damaged
// location are still reconciled.
func (r *Repo) RequestStatus(ctx context.Context, id models.RequestID) (models.RequestStatus, error) {
	snap, err := r.requestRef(id).Get(ctx)
	if err != nil {
		return "", storeerr.Wrap("get request status", err)
	}
	v, err := snap.DataAt("status")
	if err != nil {
		return "", fmt.Errorf("request %s: %w", id, err)
	}
	s, _ := v.(string)
	return models.RequestStatus(s), nil
}

// MarkMatched moves a PENDING request to MATCHED. It reports false when the
// request was in any other state.
func (r *Repo) MarkMatched(ctx context.Context, id models.RequestID) (bool, error) {
	ref := r.requestRef(id)
	changed := false
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		changed = false
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		v, _ := snap.DataAt("status")
		if s, _ := v.(string); models.RequestStatus(s) != models.StatusPending {
			return nil
		}
		changed = true
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(models.StatusMatched)},
		})
	})
	if err != nil {
		return false, storeerr.Wrap("mark request matched", err)
	}
	return changed, nil
}
