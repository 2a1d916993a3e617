package notify

import (
	"context"

	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
)

// LogChannel writes notifications to the application log. It is the
// delivery channel when no external service is configured.
type LogChannel struct{}

var _ interfaces.NotificationChannel = &LogChannel{}

// NewLogChannel creates a log delivery channel
func NewLogChannel() *LogChannel {
	return &LogChannel{}
}

func (c *LogChannel) Name() string { return "log" }

func (c *LogChannel) Deliver(ctx context.Context, n *model.Notification, recipient *model.User) error {
	logging.From(ctx).Info("notification",
		"notification_id", n.ID,
		"user_id", n.UserID,
		"email", recipient.Email,
		"kind", n.Kind,
		"priority", n.Priority,
		"title", n.Title,
		"case_id", n.CaseID,
	)
	return nil
}
