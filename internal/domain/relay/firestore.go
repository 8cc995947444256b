package relay

import (
	"context"

	"reliefmatch/backend/internal/models"

	"cloud.google.com/go/firestore"
)

// FirestoreSource follows one collection through a snapshot listener.
type FirestoreSource struct {
	fs         *firestore.Client
	collection string
}

func NewFirestoreSource(fs *firestore.Client, collection string) *FirestoreSource {
	return &FirestoreSource{fs: fs, collection: collection}
}

// FirestoreSources covers the three relayed collections.
func FirestoreSources(fs *firestore.Client) []Source {
	return []Source{
		NewFirestoreSource(fs, models.ColRequests),
		NewFirestoreSource(fs, models.ColResources),
		NewFirestoreSource(fs, models.ColMatches),
	}
}

func (s *FirestoreSource) Name() string { return s.collection }

// Watch skips the initial snapshot so only changes made after the listener
// attached are emitted.
func (s *FirestoreSource) Watch(ctx context.Context, emit func(Event)) error {
	it := s.fs.Collection(s.collection).Snapshots(ctx)
	defer it.Stop()

	first := true
	for {
		qs, err := it.Next()
		if err != nil {
			return err
		}
		if first {
			first = false
			continue
		}
		for _, ch := range qs.Changes {
			if e, ok := Describe(s.collection, kindOf(ch.Kind), ch.Doc.Ref.ID, ch.Doc.Data(), qs.ReadTime); ok {
				emit(e)
			}
		}
	}
}

func kindOf(k firestore.DocumentChangeKind) Kind {
	switch k {
	case firestore.DocumentAdded:
		return KindCreate
	case firestore.DocumentRemoved:
		return KindDelete
	default:
		return KindUpdate
	}
}
