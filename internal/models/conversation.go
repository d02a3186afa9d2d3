package models

import "time"

// Truck type codes collected during the booking flow.
const (
	TruckSemi    = "semi"
	TruckBobtail = "bobtail"
	TruckHotshot = "hotshot"
	TruckOther   = "other"
)

// Stay type codes. Weekly and monthly map to flat rates when the lot
// offers them; custom always prices per night.
const (
	StayOvernight = "overnight"
	StayWeekly    = "weekly"
	StayMonthly   = "monthly"
	StayCustom    = "custom"
)

// Conversation is one booking attempt for one phone number. At most one
// row per phone may have Active=true; finished conversations are
// deactivated and kept as audit history, never deleted.
type Conversation struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	PublicID string `gorm:"size:36;uniqueIndex;not null"`
	Phone    string `gorm:"size:20;not null;index:idx_phone_active"`
	State    string `gorm:"size:40;not null"`
	Active   bool   `gorm:"default:true;index:idx_phone_active"`

	// Fields accumulated as the flow advances.
	LocationInput    string `gorm:"size:128"`
	LotID            *uint
	CandidateLots    string `gorm:"type:json"` // lot IDs offered as a numbered list
	DriverName       string `gorm:"size:128"`
	TruckType        string `gorm:"size:16"`
	MakeModel        string `gorm:"size:128"`
	Plate            string `gorm:"size:32"`
	StayType         string `gorm:"size:16"`
	Nights           int
	QuotedTotalCents int64
	BookingID        *uint

	LastInboundAt time.Time `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Lot     *Lot     `gorm:"foreignKey:LotID"`
	Booking *Booking `gorm:"foreignKey:BookingID"`
}
