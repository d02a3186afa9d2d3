// Package config provides YAML-based configuration loading for Lotline.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Lotline configuration, loaded from lotline.yaml.
type Config struct {
	Env      string         `yaml:"env"` // "production" or anything else
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	SMS      SMSConfig      `yaml:"sms"`
	Payments PaymentsConfig `yaml:"payments"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Booking  BookingConfig  `yaml:"booking"`
	Notify   NotifyConfig   `yaml:"notify"`
	Lots     []LotConfig    `yaml:"lots"`
}

// HTTPConfig holds webhook server settings.
type HTTPConfig struct {
	Port          int     `yaml:"port"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst"`
}

// DatabaseConfig holds connection settings for the MySQL server. Driver
// "sqlite" with a Path is supported for local development.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "mysql" or "sqlite"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Path     string `yaml:"path"` // sqlite only
}

// SMSConfig holds outbound messaging provider settings.
type SMSConfig struct {
	BaseURL    string `yaml:"base_url"`
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

// PaymentsConfig holds checkout provider settings.
type PaymentsConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
}

// AlertsConfig selects the operator alert channel.
type AlertsConfig struct {
	Platform string        `yaml:"platform"` // "slack", "discord", or "" (disabled)
	Slack    SlackConfig   `yaml:"slack"`
	Discord  DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack alert channel credentials.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord alert channel credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// BookingConfig tunes domain behavior.
type BookingConfig struct {
	RolloverHour      int `yaml:"rollover_hour"`        // service day boundary, local hour
	IdleExpiryMin     int `yaml:"idle_expiry_min"`      // conversation staleness threshold
	ReviewNudgeHour   int `yaml:"review_nudge_hour"`    // lot-local hour for next-day nudges
	NudgeTestDelaySec int `yaml:"nudge_test_delay_sec"` // non-production override; 0 = off
}

// NotifyConfig tunes the scheduled-message runner.
type NotifyConfig struct {
	Schedule   string `yaml:"schedule"` // 5-field cron expression for the poll trigger
	BatchLimit int    `yaml:"batch_limit"`
}

// LotConfig seeds a Lot row at migration time.
type LotConfig struct {
	Code             string   `yaml:"code"`
	Slug             string   `yaml:"slug"`
	Name             string   `yaml:"name"`
	City             string   `yaml:"city"`
	State            string   `yaml:"state"`
	Lat              *float64 `yaml:"lat"`
	Lng              *float64 `yaml:"lng"`
	NightlyRateCents int64    `yaml:"nightly_rate_cents"`
	WeeklyRateCents  int64    `yaml:"weekly_rate_cents"`
	MonthlyRateCents int64    `yaml:"monthly_rate_cents"`
	Capacity         int      `yaml:"capacity"`
	Instructions     string   `yaml:"instructions"`
	ReviewLink       string   `yaml:"review_link"`
	Timezone         string   `yaml:"timezone"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config. Secrets may be
// supplied via environment variables instead of the file.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Production reports whether the service runs with production behavior
// (real nudge timing, release-mode HTTP).
func (c *Config) Production() bool {
	return c.Env == "production"
}

// applyEnv overlays secret-bearing fields from the environment. File
// values win only when the corresponding variable is unset.
func (c *Config) applyEnv() {
	overlay(&c.Database.Password, "LOTLINE_DB_PASSWORD")
	overlay(&c.SMS.AccountSID, "LOTLINE_SMS_ACCOUNT_SID")
	overlay(&c.SMS.AuthToken, "LOTLINE_SMS_AUTH_TOKEN")
	overlay(&c.Payments.APIKey, "LOTLINE_PAYMENTS_API_KEY")
	overlay(&c.Payments.WebhookSecret, "LOTLINE_PAYMENTS_WEBHOOK_SECRET")
	overlay(&c.Alerts.Slack.BotToken, "LOTLINE_SLACK_BOT_TOKEN")
	overlay(&c.Alerts.Discord.BotToken, "LOTLINE_DISCORD_BOT_TOKEN")
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.RatePerSecond == 0 {
		c.HTTP.RatePerSecond = 10
	}
	if c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "lotline"
	}
	if c.Database.Database == "" {
		c.Database.Database = "lotline"
	}
	if c.Booking.RolloverHour == 0 {
		c.Booking.RolloverHour = 8
	}
	if c.Booking.IdleExpiryMin == 0 {
		c.Booking.IdleExpiryMin = 30
	}
	if c.Booking.ReviewNudgeHour == 0 {
		c.Booking.ReviewNudgeHour = 20
	}
	if c.Notify.Schedule == "" {
		c.Notify.Schedule = "*/5 * * * *"
	}
	if c.Notify.BatchLimit == 0 {
		c.Notify.BatchLimit = 10
	}
	for i := range c.Lots {
		if c.Lots[i].Timezone == "" {
			c.Lots[i].Timezone = "America/Chicago"
		}
		if c.Lots[i].Slug == "" {
			c.Lots[i].Slug = strings.ToLower(strings.Join(strings.Fields(c.Lots[i].Name), "-"))
		}
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.SMS.FromNumber == "" {
		errs = append(errs, "sms.from_number is required")
	}
	if c.Payments.WebhookSecret == "" {
		errs = append(errs, "payments.webhook_secret is required")
	}
	if c.Database.Driver != "mysql" && c.Database.Driver != "sqlite" {
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (mysql, sqlite)", c.Database.Driver))
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		errs = append(errs, "database.path is required for the sqlite driver")
	}
	switch c.Alerts.Platform {
	case "", "slack", "discord":
	default:
		errs = append(errs, fmt.Sprintf("alerts.platform %q is not supported (slack, discord)", c.Alerts.Platform))
	}
	if c.Booking.RolloverHour < 0 || c.Booking.RolloverHour > 23 {
		errs = append(errs, "booking.rollover_hour must be between 0 and 23")
	}
	for i, l := range c.Lots {
		if l.Code == "" {
			errs = append(errs, fmt.Sprintf("lots[%d].code is required", i))
		}
		if l.Name == "" {
			errs = append(errs, fmt.Sprintf("lots[%d].name is required", i))
		}
		if l.City == "" {
			errs = append(errs, fmt.Sprintf("lots[%d].city is required", i))
		}
		if l.NightlyRateCents <= 0 {
			errs = append(errs, fmt.Sprintf("lots[%d].nightly_rate_cents must be positive", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
