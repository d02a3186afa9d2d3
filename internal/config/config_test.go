package config

import (
	"strings"
	"testing"
)

const validYAML = `
env: production
http:
  port: 9090
database:
  driver: mysql
  host: db.internal
  password: filepass
sms:
  base_url: https://sms.example.com
  account_sid: AC_file
  auth_token: tok_file
  from_number: "+15550001111"
payments:
  base_url: https://pay.example.com
  api_key: sk_file
  webhook_secret: whsec_file
alerts:
  platform: slack
  slack:
    bot_token: xoxb-file
    channel_id: C123
lots:
  - code: BZN1
    name: Bozeman North
    city: Bozeman
    state: MT
    nightly_rate_cents: 2500
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Production() {
		t.Error("Production() = false for env=production")
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("Port = %d", cfg.HTTP.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Host = %q", cfg.Database.Host)
	}
	if cfg.Alerts.Platform != "slack" || cfg.Alerts.Slack.ChannelID != "C123" {
		t.Errorf("Alerts = %+v", cfg.Alerts)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(strings.Replace(validYAML, "port: 9090", "", 1)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("default Port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Booking.RolloverHour != 8 {
		t.Errorf("default RolloverHour = %d, want 8", cfg.Booking.RolloverHour)
	}
	if cfg.Booking.IdleExpiryMin != 30 {
		t.Errorf("default IdleExpiryMin = %d, want 30", cfg.Booking.IdleExpiryMin)
	}
	if cfg.Booking.ReviewNudgeHour != 20 {
		t.Errorf("default ReviewNudgeHour = %d, want 20", cfg.Booking.ReviewNudgeHour)
	}
	if cfg.Notify.Schedule != "*/5 * * * *" || cfg.Notify.BatchLimit != 10 {
		t.Errorf("Notify defaults = %+v", cfg.Notify)
	}
	if cfg.Lots[0].Slug != "bozeman-north" {
		t.Errorf("derived slug = %q", cfg.Lots[0].Slug)
	}
	if cfg.Lots[0].Timezone != "America/Chicago" {
		t.Errorf("default timezone = %q", cfg.Lots[0].Timezone)
	}
}

func TestParse_EnvOverlay(t *testing.T) {
	t.Setenv("LOTLINE_DB_PASSWORD", "envpass")
	t.Setenv("LOTLINE_PAYMENTS_WEBHOOK_SECRET", "whsec_env")

	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Database.Password != "envpass" {
		t.Errorf("Password = %q, want env value", cfg.Database.Password)
	}
	if cfg.Payments.WebhookSecret != "whsec_env" {
		t.Errorf("WebhookSecret = %q, want env value", cfg.Payments.WebhookSecret)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(string) string
		want string
	}{
		{"missing from number", func(s string) string {
			return strings.Replace(s, `from_number: "+15550001111"`, "", 1)
		}, "sms.from_number"},
		{"missing webhook secret", func(s string) string {
			return strings.Replace(s, "webhook_secret: whsec_file", "", 1)
		}, "payments.webhook_secret"},
		{"bad driver", func(s string) string {
			return strings.Replace(s, "driver: mysql", "driver: postgres", 1)
		}, "database.driver"},
		{"bad alerts platform", func(s string) string {
			return strings.Replace(s, "platform: slack", "platform: pager", 1)
		}, "alerts.platform"},
		{"lot missing rate", func(s string) string {
			return strings.Replace(s, "nightly_rate_cents: 2500", "nightly_rate_cents: 0", 1)
		}, "nightly_rate_cents"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.mut(validYAML)))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %v, want to mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/lotline.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
