package main

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dnaclectic/lotline/internal/alert"
	"github.com/dnaclectic/lotline/internal/alert/discord"
	"github.com/dnaclectic/lotline/internal/alert/slack"
	"github.com/dnaclectic/lotline/internal/booking"
	"github.com/dnaclectic/lotline/internal/config"
	"github.com/dnaclectic/lotline/internal/convo"
	"github.com/dnaclectic/lotline/internal/lots"
	"github.com/dnaclectic/lotline/internal/notify"
	"github.com/dnaclectic/lotline/internal/payments"
	"github.com/dnaclectic/lotline/internal/sms"
	"github.com/dnaclectic/lotline/internal/store"
)

// app bundles the wired service graph shared by serve and notify.
type app struct {
	store     *store.Store
	resolver  *lots.Resolver
	avail     *lots.DBAvailability
	sender    sms.Sender
	alerts    alert.Notifier
	finalizer *booking.Finalizer
	machine   *convo.Machine
	runner    *notify.Runner
}

// buildApp constructs every component from config and an open database.
func buildApp(cfg *config.Config, gormDB *gorm.DB) (*app, error) {
	st, err := store.New(gormDB)
	if err != nil {
		return nil, err
	}
	resolver, err := lots.NewResolver(gormDB)
	if err != nil {
		return nil, err
	}
	avail, err := lots.NewDBAvailability(gormDB, cfg.Booking.RolloverHour)
	if err != nil {
		return nil, err
	}

	sender, err := sms.NewClient(sms.ClientOpts{
		BaseURL:    cfg.SMS.BaseURL,
		AccountSID: cfg.SMS.AccountSID,
		AuthToken:  cfg.SMS.AuthToken,
		FromNumber: cfg.SMS.FromNumber,
	})
	if err != nil {
		return nil, err
	}
	provider, err := payments.NewClient(payments.ClientOpts{
		BaseURL:    cfg.Payments.BaseURL,
		APIKey:     cfg.Payments.APIKey,
		SuccessURL: cfg.Payments.SuccessURL,
		CancelURL:  cfg.Payments.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	alerts, err := buildAlerts(cfg.Alerts)
	if err != nil {
		return nil, err
	}

	var nudgeDelay time.Duration
	if !cfg.Production() && cfg.Booking.NudgeTestDelaySec > 0 {
		nudgeDelay = time.Duration(cfg.Booking.NudgeTestDelaySec) * time.Second
	}
	finalizer, err := booking.NewFinalizer(booking.FinalizerOpts{
		Store:          st,
		Lots:           resolver,
		Provider:       provider,
		Sender:         sender,
		Alerts:         alerts,
		RolloverHour:   cfg.Booking.RolloverHour,
		ReviewHour:     cfg.Booking.ReviewNudgeHour,
		NudgeTestDelay: nudgeDelay,
	})
	if err != nil {
		return nil, err
	}

	machine, err := convo.NewMachine(convo.MachineOpts{
		Store:        st,
		Lots:         resolver,
		Availability: avail,
		Finalizer:    finalizer,
		Alerts:       alerts,
		IdleExpiry:   time.Duration(cfg.Booking.IdleExpiryMin) * time.Minute,
	})
	if err != nil {
		return nil, err
	}

	runner, err := notify.NewRunner(notify.RunnerOpts{
		Store:      st,
		Sender:     sender,
		Alerts:     alerts,
		BatchLimit: cfg.Notify.BatchLimit,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		store:     st,
		resolver:  resolver,
		avail:     avail,
		sender:    sender,
		alerts:    alerts,
		finalizer: finalizer,
		machine:   machine,
		runner:    runner,
	}, nil
}

// buildAlerts picks the operator alert channel from config.
func buildAlerts(cfg config.AlertsConfig) (alert.Notifier, error) {
	switch cfg.Platform {
	case "slack":
		return slack.New(slack.NotifierOpts{
			BotToken:  cfg.Slack.BotToken,
			ChannelID: cfg.Slack.ChannelID,
		})
	case "discord":
		return discord.New(discord.NotifierOpts{
			BotToken:  cfg.Discord.BotToken,
			ChannelID: cfg.Discord.ChannelID,
		})
	case "":
		return alert.Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown alerts platform %q", cfg.Platform)
	}
}
