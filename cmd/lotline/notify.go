package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dnaclectic/lotline/internal/config"
	"github.com/dnaclectic/lotline/internal/db"
)

func newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Scheduled message commands",
	}

	cmd.AddCommand(newNotifyRunCmd())
	return cmd
}

func newNotifyRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dispatch due scheduled messages once and exit",
		Long:  "One-shot equivalent of the dispatcher that runs inside serve; useful from an external scheduler or for catching up after downtime.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotifyRun(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "lotline.yaml", "path to LotLine config file")
	return cmd
}

func runNotifyRun(cmd *cobra.Command, configPath string) error {
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

	sent, err := a.runner.DispatchDue(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Dispatched %d scheduled messages\n", sent)
	return nil
}
