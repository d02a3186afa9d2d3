package lots

import (
	"fmt"
	"time"

	"github.com/dnaclectic/lotline/internal/models"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// availabilityTTL bounds how stale a cached remaining-capacity answer can
// be. Availability is advisory, so short staleness is acceptable.
const availabilityTTL = 30 * time.Second

// Availability answers how many spots remain at a lot for the service
// day that contains a moment. The second return is false when the
// answer is unknown; callers treat unknown as "proceed optimistically",
// never as sold out.
type Availability interface {
	Remaining(lotID uint, at time.Time) (int, bool)
}

// DBAvailability computes remaining capacity from booking rows: lot
// capacity minus bookings whose date range covers the service day and
// that still hold a spot (pending or confirmed).
type DBAvailability struct {
	db       *gorm.DB
	cache    *gocache.Cache
	rollover int
}

// NewDBAvailability creates a DBAvailability with a short-TTL cache in
// front of the count query. rolloverHour must match the hour bookings
// are dated with, or the overlap window drifts by a day.
func NewDBAvailability(db *gorm.DB, rolloverHour int) (*DBAvailability, error) {
	if db == nil {
		return nil, fmt.Errorf("lots: availability: db is required")
	}
	return &DBAvailability{
		db:       db,
		cache:    gocache.New(availabilityTTL, 2*availabilityTTL),
		rollover: rolloverHour,
	}, nil
}

// Remaining returns remaining capacity for the lot on the service day
// containing "at". The day is anchored in the lot's timezone so it lines
// up with stored booking dates regardless of where the caller's clock
// lives. Query failures report unknown rather than an error:
// availability is a filter, not a gate, and the flow must keep moving
// without it.
func (a *DBAvailability) Remaining(lotID uint, at time.Time) (int, bool) {
	var lot models.Lot
	if err := a.db.First(&lot, lotID).Error; err != nil {
		return 0, false
	}

	day := ServiceDay(at, TimeZone(&lot), a.rollover)
	key := fmt.Sprintf("%d:%s", lotID, day.Format("2006-01-02"))
	if v, ok := a.cache.Get(key); ok {
		return v.(int), true
	}

	var taken int64
	err := a.db.Model(&models.Booking{}).
		Where("lot_id = ?", lotID).
		Where("status IN ?", []string{models.BookingPendingPayment, models.BookingConfirmed}).
		Where("start_date <= ? AND end_date > ?", day, day).
		Count(&taken).Error
	if err != nil {
		return 0, false
	}

	remaining := lot.Capacity - int(taken)
	a.cache.Set(key, remaining, gocache.DefaultExpiration)
	return remaining, true
}
