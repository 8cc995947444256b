// Package push sends device notifications through Firebase Cloud Messaging.
package push

import (
	"context"
	"log"
	"strings"

	"reliefmatch/backend/internal/models"

	"firebase.google.com/go/v4/messaging"
)

// Sender is the part of *messaging.Client used here.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Publisher is nil-safe: a nil Publisher or nil Sender drops every message.
type Publisher struct {
	sender Sender
}

func NewPublisher(s Sender) *Publisher {
	return &Publisher{sender: s}
}

// RequestsTopic is the topic helpers subscribe to for one category.
func RequestsTopic(c models.Category) string {
	return "requests-" + strings.ToLower(string(c))
}

// UserTopic addresses every device of one user.
func UserTopic(uid string) string {
	return "user-" + uid
}

// Publish never fails the caller; delivery problems are logged.
func (p *Publisher) Publish(ctx context.Context, topic, title, body string, data map[string]string) {
	if p == nil || p.sender == nil || topic == "" {
		return
	}
	_, err := p.sender.Send(ctx, &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		log.Printf("[push] topic=%s: %v", topic, err)
	}
}
