package db

import (
	"fmt"

	"github.com/dnaclectic/lotline/internal/config"
	"github.com/dnaclectic/lotline/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Lot{},
		&models.Conversation{},
		&models.Booking{},
		&models.ScheduledMessage{},
		&models.MessageLog{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedLots upserts Lot rows from configuration, keyed by code. Rates,
// capacity, and copy are refreshed on every run so config stays the
// source of truth for inventory metadata.
func SeedLots(db *gorm.DB, lots []config.LotConfig) error {
	for _, lc := range lots {
		lot := models.Lot{
			Code:             lc.Code,
			Slug:             lc.Slug,
			Name:             lc.Name,
			City:             lc.City,
			State:            lc.State,
			Lat:              lc.Lat,
			Lng:              lc.Lng,
			NightlyRateCents: lc.NightlyRateCents,
			WeeklyRateCents:  lc.WeeklyRateCents,
			MonthlyRateCents: lc.MonthlyRateCents,
			Capacity:         lc.Capacity,
			Instructions:     lc.Instructions,
			ReviewLink:       lc.ReviewLink,
			Timezone:         lc.Timezone,
			Active:           true,
		}

		result := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"slug", "name", "city", "state", "lat", "lng",
				"nightly_rate_cents", "weekly_rate_cents", "monthly_rate_cents",
				"capacity", "instructions", "review_link", "timezone", "active",
			}),
		}).Create(&lot)
		if result.Error != nil {
			return fmt.Errorf("db: seed lot %q: %w", lc.Code, result.Error)
		}
	}
	return nil
}
