package models

import "time"

// Booking statuses. A booking is created in pending_payment and moves to
// confirmed exactly once, from the payment webhook. Abandoned marks
// bookings whose parent conversation was cancelled or expired before
// payment, so pending rows do not accumulate forever.
const (
	BookingPendingPayment = "pending_payment"
	BookingConfirmed      = "confirmed"
	BookingAbandoned      = "abandoned"
)

// Booking is one completed-or-attempted purchase. Driver, vehicle, and
// pricing fields are snapshots taken at confirmation of the summary; they
// are never re-read from the conversation afterwards.
type Booking struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	PublicID       string `gorm:"size:36;uniqueIndex;not null"`
	ConversationID uint   `gorm:"not null;index"`
	LotID          uint   `gorm:"not null;index"`

	DriverName string `gorm:"size:128;not null"`
	TruckType  string `gorm:"size:16"`
	MakeModel  string `gorm:"size:128"`
	Plate      string `gorm:"size:32"`
	StayType   string `gorm:"size:16;not null"`
	Nights     int    `gorm:"not null"`

	NightlyRateCents int64  `gorm:"not null"`
	SubtotalCents    int64  `gorm:"not null"`
	DepositHoldCents int64  `gorm:"not null"`
	TotalCents       int64  `gorm:"not null"`
	Currency         string `gorm:"size:3;default:USD"`

	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`

	CheckoutSessionID string `gorm:"size:128;index"`
	PaymentIntentID   string `gorm:"size:128"`
	Status            string `gorm:"size:20;default:pending_payment;index"`
	ConfirmedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Lot          Lot          `gorm:"foreignKey:LotID"`
	Conversation Conversation `gorm:"foreignKey:ConversationID"`
}
