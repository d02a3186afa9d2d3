package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dnaclectic/lotline/internal/config"
	"github.com/dnaclectic/lotline/internal/db"
	"github.com/dnaclectic/lotline/internal/models"
	"github.com/dnaclectic/lotline/internal/store"
)

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show conversation and booking counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "lotline.yaml", "path to LotLine config file")
	return cmd
}

func runStatus(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	st, err := store.New(gormDB)
	if err != nil {
		return err
	}

	active, err := st.ActiveConversationCount()
	if err != nil {
		return err
	}
	due, err := st.DueUnsentCount(time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Active conversations: %d\n", active)
	fmt.Fprintf(out, "Due scheduled messages: %d\n", due)

	fmt.Fprintln(out, "Bookings:")
	for _, status := range []string{models.BookingPendingPayment, models.BookingConfirmed, models.BookingAbandoned} {
		var n int64
		if err := gormDB.Model(&models.Booking{}).Where("status = ?", status).Count(&n).Error; err != nil {
			return fmt.Errorf("count %s bookings: %w", status, err)
		}
		fmt.Fprintf(out, "  %-16s %d\n", status, n)
	}

	var lots int64
	if err := gormDB.Model(&models.Lot{}).Where("active = ?", true).Count(&lots).Error; err != nil {
		return fmt.Errorf("count lots: %w", err)
	}
	fmt.Fprintf(out, "Active lots: %d\n", lots)
	return nil
}
