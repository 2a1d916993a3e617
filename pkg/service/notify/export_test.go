package notify

import (
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/slack-go/slack"
)

func (c *SlackChannel) BuildBlocks(n *model.Notification, mention string) []slack.Block {
	return c.buildBlocks(n, mention)
}
