package slack

import (
	"context"
	"errors"
	"strings"
	"testing"

	slackapi "github.com/slack-go/slack"
)

type mockClient struct {
	channelID string
	calls     int
	err       error
}

func (m *mockClient) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.channelID = channelID
	m.calls++
	return "C1", "123.456", m.err
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(NotifierOpts{ChannelID: "C1"}); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := New(NotifierOpts{BotToken: "xoxb-1"}); err == nil {
		t.Fatal("expected error for missing channel")
	}
}

func TestAlert(t *testing.T) {
	mc := &mockClient{}
	n, err := New(NotifierOpts{ChannelID: "C1", Client: mc})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := n.Alert(context.Background(), "lookup failure", "conversation 12 lot missing"); err != nil {
		t.Fatalf("Alert: %v", err)
	}
	if mc.channelID != "C1" || mc.calls != 1 {
		t.Errorf("post: channel=%q calls=%d", mc.channelID, mc.calls)
	}
}

func TestAlert_Error(t *testing.T) {
	mc := &mockClient{err: errors.New("rate limited")}
	n, _ := New(NotifierOpts{ChannelID: "C1", Client: mc})

	err := n.Alert(context.Background(), "s", "b")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "slack:") {
		t.Errorf("error %q missing package prefix", err)
	}
}
