package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dnaclectic/lotline/internal/config"
	"github.com/dnaclectic/lotline/internal/db"
	"github.com/dnaclectic/lotline/internal/httpapi"
	"github.com/dnaclectic/lotline/internal/metrics"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and nudge dispatcher",
		Long:  "Starts the HTTP ingress for SMS and payment webhooks plus the cron-driven review nudge dispatcher. Blocks until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "lotline.yaml", "path to LotLine config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, gormDB)
	if err != nil {
		return err
	}
	m := metrics.New("lotline", nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The nudge dispatcher rides a cron schedule instead of a ticker so
	// operators can align it with carrier quiet hours.
	c := cron.New()
	_, err = c.AddFunc(cfg.Notify.Schedule, func() {
		sent, err := a.runner.DispatchDue(ctx)
		if err != nil {
			log.Printf("serve: dispatch due: %v", err)
			return
		}
		if sent > 0 {
			m.NudgesSent.Add(float64(sent))
			log.Printf("serve: dispatched %d scheduled messages", sent)
		}
	})
	if err != nil {
		return fmt.Errorf("notify schedule %q: %w", cfg.Notify.Schedule, err)
	}
	c.Start()
	defer c.Stop()

	fmt.Fprintf(out, "LotLine serving webhooks on :%d (nudge schedule %q)\n", cfg.HTTP.Port, cfg.Notify.Schedule)

	return httpapi.Start(ctx, httpapi.StartOpts{
		Machine:       a.machine,
		Payments:      a.finalizer,
		Store:         a.store,
		Metrics:       m,
		WebhookSecret: cfg.Payments.WebhookSecret,
		Port:          cfg.HTTP.Port,
		RateLimit:     rate.Limit(cfg.HTTP.RatePerSecond),
		RateBurst:     cfg.HTTP.RateBurst,
		Out:           out,
	})
}
