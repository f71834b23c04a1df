package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/dogamak/wasmpub/pkg/domain/interfaces"
	"github.com/dogamak/wasmpub/pkg/domain/model"
)

type slackNotifier struct {
	webhookURL string
}

// NewSlack creates a Notifier posting to a Slack incoming webhook.
func NewSlack(webhookURL string) interfaces.Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
	}
}

// NotifyResult posts the publish outcome to the webhook.
func (n *slackNotifier) NotifyResult(ctx context.Context, result *model.PublishResult, runErr error) error {
	var msg slack.WebhookMessage

	switch {
	case runErr != nil:
		text := "npm publish failed"
		if result != nil && result.Plan != nil {
			text = fmt.Sprintf("npm publish failed: %s@%s", result.Plan.PackageName, result.Plan.Version)
		}
		msg = slack.WebhookMessage{
			Text: text,
			Attachments: []slack.Attachment{{
				Color: "danger",
				Text:  runErr.Error(),
			}},
		}
	default:
		msg = slack.WebhookMessage{
			Text: fmt.Sprintf("Published %s@%s to %s (tag %s, took %s)",
				result.Plan.PackageName,
				result.Plan.Version,
				result.Plan.RegistryURL,
				result.Plan.DistTag,
				result.Duration.Round(time.Millisecond),
			),
		}
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, &msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack notification")
	}

	return nil
}
