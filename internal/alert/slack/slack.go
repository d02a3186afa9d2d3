// Package slack implements the alert Notifier for Slack.
package slack

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Notifier posts operator alerts to a Slack channel.
type Notifier struct {
	client    slackClient
	channelID string
}

// NotifierOpts holds parameters for creating a Notifier.
type NotifierOpts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Notifier.
func New(opts NotifierOpts) (*Notifier, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel id is required")
	}
	client := opts.Client
	if client == nil {
		client = slackapi.New(opts.BotToken)
	}
	return &Notifier{client: client, channelID: opts.ChannelID}, nil
}

// Alert posts one alert message.
func (n *Notifier) Alert(ctx context.Context, subject, body string) error {
	text := fmt.Sprintf("*%s*\n%s", subject, body)
	_, _, err := n.client.PostMessageContext(ctx, n.channelID, slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack: post alert: %w", err)
	}
	return nil
}
