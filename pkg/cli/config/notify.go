package config

import "github.com/urfave/cli/v3"

// Notify holds notification configuration
type Notify struct {
	SlackWebhookURL string
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook for publish results (empty disables)",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("WASMPUB_SLACK_WEBHOOK_URL"),
		},
	}
}

// Enabled reports whether a notification channel is configured.
func (c *Notify) Enabled() bool {
	return c.SlackWebhookURL != ""
}
