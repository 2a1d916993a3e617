package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Service provides the Slack API operations used for notification delivery
type Service interface {
	// LookupUserIDByEmail resolves the Slack member ID of a user by email (with caching).
	// Returns ErrUserNotFound when the workspace has no such member.
	LookupUserIDByEmail(ctx context.Context, email string) (string, error)

	// PostMessage posts a Block Kit message to a channel or member ID and returns
	// the message timestamp. The text parameter is used as a fallback for notifications.
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error)
}
