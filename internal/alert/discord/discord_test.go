package discord

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type mockSession struct {
	channelID string
	content   string
	err       error
}

func (m *mockSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channelID = channelID
	m.content = content
	return &discordgo.Message{ID: "1"}, m.err
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(NotifierOpts{ChannelID: "C1"}); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := New(NotifierOpts{BotToken: "tok"}); err == nil {
		t.Fatal("expected error for missing channel")
	}
}

func TestAlert(t *testing.T) {
	ms := &mockSession{}
	n, err := New(NotifierOpts{ChannelID: "C1", Session: ms})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := n.Alert(context.Background(), "payment webhook", "unknown session cs_9"); err != nil {
		t.Fatalf("Alert: %v", err)
	}
	if ms.channelID != "C1" {
		t.Errorf("channel = %q", ms.channelID)
	}
	if !strings.Contains(ms.content, "payment webhook") || !strings.Contains(ms.content, "cs_9") {
		t.Errorf("content = %q", ms.content)
	}
}

func TestAlert_Error(t *testing.T) {
	ms := &mockSession{err: errors.New("forbidden")}
	n, _ := New(NotifierOpts{ChannelID: "C1", Session: ms})

	if err := n.Alert(context.Background(), "s", "b"); err == nil {
		t.Fatal("expected error")
	}
}
