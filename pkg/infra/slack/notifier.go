package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/shipit/pkg/domain/interfaces"
	"github.com/m-mizutani/shipit/pkg/domain/model"
)

type notifier struct {
	webhookURL string
	channel    string
}

var _ interfaces.Notifier = (*notifier)(nil)

// NewNotifier creates a Notifier posting to a Slack incoming webhook
func NewNotifier(webhookURL, channel string) interfaces.Notifier {
	return &notifier{
		webhookURL: webhookURL,
		channel:    channel,
	}
}

// Notify posts a release announcement
func (n *notifier) Notify(ctx context.Context, repo *model.RepoIdentity, state *model.RunState) error {
	title := fmt.Sprintf("Released %s %s", repo.Repository, state.Version)
	if state.ReleaseURL != "" {
		title = fmt.Sprintf("Released <%s|%s %s>", state.ReleaseURL, repo.Repository, state.Version)
	}

	msg := &slack.WebhookMessage{
		Channel: n.channel,
		Text:    title,
	}
	if state.Changelog != "" {
		msg.Attachments = []slack.Attachment{
			{
				Title: "Changelog",
				Text:  state.Changelog,
			},
		}
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack message", goerr.V("repository", repo.Repository))
	}
	return nil
}
