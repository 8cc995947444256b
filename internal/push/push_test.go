package push

import (
	"context"
	"errors"
	"testing"

	"reliefmatch/backend/internal/models"

	"firebase.google.com/go/v4/messaging"
)

type recordingSender struct {
	sent []*messaging.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	r.sent = append(r.sent, m)
	return "msg-1", r.err
}

func TestPublish(t *testing.T) {
	s := &recordingSender{}
	p := NewPublisher(s)
	p.Publish(context.Background(), RequestsTopic(models.CategoryMedical), "New MEDICAL request", "HIGH priority", map[string]string{"requestId": "r1"})

	if len(s.sent) != 1 {
		t.Fatalf("sent %d messages", len(s.sent))
	}
	m := s.sent[0]
	if m.Topic != "requests-medical" || m.Notification.Title != "New MEDICAL request" || m.Data["requestId"] != "r1" {
		t.Errorf("message = %+v", m)
	}
}

func TestPublishIsNilSafeAndSwallowsErrors(t *testing.T) {
	var nilPub *Publisher
	nilPub.Publish(context.Background(), "t", "a", "b", nil)
	NewPublisher(nil).Publish(context.Background(), "t", "a", "b", nil)

	s := &recordingSender{err: errors.New("quota")}
	NewPublisher(s).Publish(context.Background(), UserTopic("u1"), "Matched", "", nil)
	if len(s.sent) != 1 || s.sent[0].Topic != "user-u1" {
		t.Errorf("sent = %+v", s.sent)
	}
	NewPublisher(s).Publish(context.Background(), "", "x", "", nil)
	if len(s.sent) != 1 {
		t.Error("empty topic should be dropped")
	}
}
