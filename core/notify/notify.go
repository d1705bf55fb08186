package notify

import (
	"context"
	"time"
)

// Notification carries a handler's callback payload to the requesting channel.
type Notification struct {
	Command       string         `json:"command"`
	CorrelationID string         `json:"correlationId,omitempty"`
	UserID        string         `json:"userId,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
	Time          time.Time      `json:"time"`
}

// Notifier publishes handler results back to the requester.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }
