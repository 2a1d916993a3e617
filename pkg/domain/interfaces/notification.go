package interfaces

import (
	"context"

	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

// NotificationRepository defines the interface for Notification data access
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error

	// Get retrieves a notification by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id model.NotificationID) (*model.Notification, error)

	// ListByUser retrieves notifications of a user, newest first
	ListByUser(ctx context.Context, userID model.UserID, unreadOnly bool, limit int) ([]*model.Notification, error)

	// ListUndelivered retrieves notifications not yet delivered to external
	// channels with fewer than maxAttempts attempts, oldest first
	ListUndelivered(ctx context.Context, maxAttempts int, limit int) ([]*model.Notification, error)

	Update(ctx context.Context, n *model.Notification) error
}
