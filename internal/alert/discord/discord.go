// Package discord implements the alert Notifier for Discord.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts operator alerts to a Discord channel. Plain REST sends
// only; no gateway connection is held.
type Notifier struct {
	sess      session
	channelID string
}

// NotifierOpts holds parameters for creating a Notifier.
type NotifierOpts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real Discord API.
	Session session
}

// New creates a Discord Notifier.
func New(opts NotifierOpts) (*Notifier, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel id is required")
	}
	sess := opts.Session
	if sess == nil {
		dg, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		sess = dg
	}
	return &Notifier{sess: sess, channelID: opts.ChannelID}, nil
}

// Alert posts one alert message.
func (n *Notifier) Alert(ctx context.Context, subject, body string) error {
	content := fmt.Sprintf("**%s**\n%s", subject, body)
	if _, err := n.sess.ChannelMessageSend(n.channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: post alert: %w", err)
	}
	return nil
}
