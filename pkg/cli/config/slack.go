package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/interfaces"
	"github.com/optimatax/reliefdesk/pkg/service/notify"
	"github.com/optimatax/reliefdesk/pkg/service/slack"
	"github.com/optimatax/reliefdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for Slack notification delivery
type Slack struct {
	botToken        string
	fallbackChannel string
}

// Flags returns CLI flags for Slack configuration
func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for notification delivery",
			Category:    "Slack",
			Sources:     cli.EnvVars("RELIEFDESK_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-fallback-channel",
			Usage:       "Channel ID for notifications to users without a Slack account",
			Category:    "Slack",
			Sources:     cli.EnvVars("RELIEFDESK_SLACK_FALLBACK_CHANNEL"),
			Destination: &x.fallbackChannel,
		},
	}
}

// IsConfigured reports whether Slack delivery is enabled
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Channels returns the external notification channels. The log channel is
// always present; Slack is added when a bot token is set.
func (x *Slack) Channels(baseURL string) ([]interfaces.NotificationChannel, error) {
	channels := []interfaces.NotificationChannel{notify.NewLogChannel()}
	if !x.IsConfigured() {
		logging.Default().Info("Slack Bot Token not configured, notifications are written to the log only")
		return channels, nil
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}

	var opts []notify.SlackOption
	if x.fallbackChannel != "" {
		opts = append(opts, notify.WithFallbackChannel(x.fallbackChannel))
	}
	if baseURL != "" {
		opts = append(opts, notify.WithBaseURL(baseURL))
	}
	logging.Default().Info("Slack notification delivery enabled", "fallback_channel", x.fallbackChannel)

	return append(channels, notify.NewSlackChannel(svc, opts...)), nil
}
