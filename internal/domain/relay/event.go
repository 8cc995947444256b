// Package relay turns document changes in the requests, resources and
// matches collections into short human-readable events, keeps the most
// recent ones in a bounded feed and fans them out to subscribers.
package relay

import (
	"fmt"
	"time"

	"reliefmatch/backend/internal/models"

	"github.com/google/uuid"
)

type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

type Event struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Kind       Kind            `json:"kind"`
	DocID      string          `json:"docId"`
	Message    string          `json:"message"`
	Priority   models.Priority `json:"priority,omitempty"`
	At         time.Time       `json:"at"`
}

// Describe builds the event for one document change. It reports false for
// changes that are not announced (deletes, resource edits, match updates).
func Describe(collection string, kind Kind, docID string, data map[string]interface{}, at time.Time) (Event, bool) {
	str := func(k string) string {
		s, _ := data[k].(string)
		return s
	}

	e := Event{
		ID:         uuid.NewString(),
		Collection: collection,
		Kind:       kind,
		DocID:      docID,
		At:         at.UTC(),
	}

	switch {
	case collection == models.ColRequests && kind == KindCreate:
		e.Priority = models.Priority(str("priority"))
		e.Message = fmt.Sprintf("New %s request - %s priority", str("type"), e.Priority)
	case collection == models.ColRequests && kind == KindUpdate:
		e.Message = fmt.Sprintf("Request %s updated - Status: %s", str("type"), str("status"))
	case collection == models.ColResources && kind == KindCreate:
		e.Message = fmt.Sprintf("New %s resource available", str("type"))
	case collection == models.ColMatches && kind == KindCreate:
		e.Message = "New match created! Request connected with resource."
	default:
		return Event{}, false
	}
	return e, true
}
