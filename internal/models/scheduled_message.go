package models

import "time"

// Scheduled message kinds. Only review nudges exist today.
const (
	KindReviewNudge = "review_nudge"
)

// ScheduledMessage is a deferred one-shot outbound notification. Dispatch
// is driven by polling: rows with SentAt null and SendAt <= now are due.
// SentAt is set on success and on permanent failure; transient failures
// leave it null so the next poll retries.
type ScheduledMessage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	BookingID uint   `gorm:"not null;index"`
	LotID     uint   `gorm:"not null"`
	Phone     string `gorm:"size:20;not null"`
	Kind      string `gorm:"size:20;not null;default:review_nudge"`
	SendAt    time.Time `gorm:"not null;index"`
	SentAt    *time.Time
	LastError string `gorm:"size:512"`
	Attempts  int    `gorm:"default:0"`
	CreatedAt time.Time

	Booking Booking `gorm:"foreignKey:BookingID"`
	Lot     Lot     `gorm:"foreignKey:LotID"`
}
