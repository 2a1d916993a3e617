package interfaces

import (
	"context"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

// NotificationChannel delivers a persisted notification outside the application
type NotificationChannel interface {
	// Name identifies the channel in logs
	Name() string

	Deliver(ctx context.Context, n *model.Notification, recipient *model.User) error
}

// EventPublisher receives domain events produced by use cases. Publishing
// never fails the operation that produced the events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...*model.Event)
}
