package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	slacksvc "github.com/optimatax/reliefdesk/pkg/service/slack"
	"github.com/slack-go/slack"
)

// SlackChannel sends notifications as Slack direct messages. Recipients who
// are not workspace members are posted to the fallback channel when one is set.
type SlackChannel struct {
	svc             slacksvc.Service
	fallbackChannel string
	baseURL         string
}

var _ interfaces.NotificationChannel = &SlackChannel{}

// SlackOption configures SlackChannel
type SlackOption func(*SlackChannel)

// WithFallbackChannel posts messages for unknown members to the channel
func WithFallbackChannel(channelID string) SlackOption {
	return func(c *SlackChannel) {
		c.fallbackChannel = channelID
	}
}

// WithBaseURL links case notifications to the web frontend
func WithBaseURL(url string) SlackOption {
	return func(c *SlackChannel) {
		c.baseURL = url
	}
}

// NewSlackChannel creates a Slack delivery channel
func NewSlackChannel(svc slacksvc.Service, opts ...SlackOption) *SlackChannel {
	c := &SlackChannel{svc: svc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *SlackChannel) Name() string { return "slack" }

func (c *SlackChannel) Deliver(ctx context.Context, n *model.Notification, recipient *model.User) error {
	if recipient == nil || recipient.Email == "" {
		return goerr.New("recipient has no email", goerr.V("notification_id", n.ID))
	}

	target, err := c.svc.LookupUserIDByEmail(ctx, recipient.Email)
	mention := ""
	if err != nil {
		if !errors.Is(err, slacksvc.ErrUserNotFound) || c.fallbackChannel == "" {
			return goerr.Wrap(err, "failed to resolve Slack recipient", goerr.V("notification_id", n.ID))
		}
		target = c.fallbackChannel
		mention = fmt.Sprintf("For %s (%s)", recipient.Name, recipient.Email)
	}

	if _, err := c.svc.PostMessage(ctx, target, c.buildBlocks(n, mention), n.Title+": "+n.Message); err != nil {
		return goerr.Wrap(err, "failed to deliver Slack notification", goerr.V("notification_id", n.ID))
	}
	return nil
}

func priorityEmoji(p types.NotificationPriority) string {
	switch p {
	case types.NotificationPriorityHigh:
		return ":rotating_light:"
	case types.NotificationPriorityLow:
		return ":information_source:"
	default:
		return ":bell:"
	}
}

func (c *SlackChannel) buildBlocks(n *model.Notification, mention string) []slack.Block {
	header := slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, n.Title, true, false),
	)
	body := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, priorityEmoji(n.Priority)+" "+n.Message, false, false),
		nil, nil,
	)
	blocks := []slack.Block{header, body}

	var elements []slack.MixedElement
	if n.CaseID != "" {
		caseText := fmt.Sprintf("Case `%s`", n.CaseID)
		if c.baseURL != "" {
			caseText = fmt.Sprintf("Case <%s/cases/%s|%s>", c.baseURL, n.CaseID, n.CaseID)
		}
		elements = append(elements, slack.NewTextBlockObject(slack.MarkdownType, caseText, false, false))
	}
	if mention != "" {
		elements = append(elements, slack.NewTextBlockObject(slack.MarkdownType, mention, false, false))
	}
	if len(elements) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", elements...))
	}
	return blocks
}
