package models

import "time"

// Lot is a bookable parking location. Lots are owned by inventory
// management; this service only reads them.
type Lot struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	Code             string `gorm:"size:16;uniqueIndex;not null"`
	Slug             string `gorm:"size:64;uniqueIndex;not null"`
	Name             string `gorm:"size:128;not null"`
	City             string `gorm:"size:64;not null;index:idx_city_state"`
	State            string `gorm:"size:2;index:idx_city_state"`
	Lat              *float64
	Lng              *float64
	NightlyRateCents int64 `gorm:"not null"`
	WeeklyRateCents  int64 // 0 = weekly rate not offered
	MonthlyRateCents int64 // 0 = monthly rate not offered
	Capacity         int   `gorm:"not null"`
	Instructions     string `gorm:"type:text"`
	ReviewLink       string `gorm:"size:256"`
	Timezone         string `gorm:"size:64;default:America/Chicago"`
	Active           bool   `gorm:"default:true;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasGeo reports whether the lot carries a usable coordinate pair.
func (l *Lot) HasGeo() bool {
	return l.Lat != nil && l.Lng != nil
}
