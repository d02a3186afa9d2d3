package lots

import (
	"testing"
	"time"

	"github.com/dnaclectic/lotline/internal/models"
	"gorm.io/gorm"
)

func denverTime(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func seedBooking(t *testing.T, db *gorm.DB, lotID uint, status string, start, end time.Time) {
	t.Helper()
	b := models.Booking{
		PublicID:   start.Format("20060102-150405") + "-" + status,
		LotID:      lotID,
		DriverName: "d",
		StayType:   models.StayOvernight,
		Nights:     1,
		Status:     status,
		StartDate:  start,
		EndDate:    end,
	}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}
}

func TestRemaining_NoBookings(t *testing.T) {
	db := openLotsTestDB(t)
	lot := seedLot(t, db, "BZN1", "bozeman-north", "Bozeman North", "Bozeman", "MT", 4)
	a, err := NewDBAvailability(db, DefaultRolloverHour)
	if err != nil {
		t.Fatalf("NewDBAvailability: %v", err)
	}

	got, known := a.Remaining(lot.ID, time.Now())
	if !known {
		t.Fatal("Remaining unknown, want known")
	}
	if got != 4 {
		t.Errorf("Remaining = %d, want 4", got)
	}
}

func TestRemaining_CountsOverlappingBookings(t *testing.T) {
	db := openLotsTestDB(t)
	denver := denverTime(t)
	lot := seedLot(t, db, "BZN1", "bozeman-north", "Bozeman North", "Bozeman", "MT", 3)
	a, _ := NewDBAvailability(db, DefaultRolloverHour)

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, denver)
	seedBooking(t, db, lot.ID, models.BookingConfirmed, day, day.AddDate(0, 0, 1))
	seedBooking(t, db, lot.ID, models.BookingPendingPayment, day.AddDate(0, 0, -2), day.AddDate(0, 0, 5))
	// Ended before the day: does not count.
	seedBooking(t, db, lot.ID, models.BookingConfirmed, day.AddDate(0, 0, -3), day)
	// Abandoned: does not count.
	seedBooking(t, db, lot.ID, models.BookingAbandoned, day, day.AddDate(0, 0, 1))

	at := time.Date(2026, 9, 1, 14, 0, 0, 0, denver)
	got, known := a.Remaining(lot.ID, at)
	if !known {
		t.Fatal("Remaining unknown, want known")
	}
	if got != 1 {
		t.Errorf("Remaining = %d, want 1", got)
	}
}

func TestRemaining_LotLocalServiceDay(t *testing.T) {
	db := openLotsTestDB(t)
	denver := denverTime(t)
	lot := seedLot(t, db, "DEN1", "denver-south", "Denver South", "Denver", "CO", 1)
	a, _ := NewDBAvailability(db, DefaultRolloverHour)

	// The only spot is taken for the Sep 1 service day.
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, denver)
	seedBooking(t, db, lot.ID, models.BookingConfirmed, day, day.AddDate(0, 0, 1))

	// Caller's clock is UTC. 14:00 UTC is 08:00 in Denver, still the
	// Sep 1 service day, so the lot is full.
	at := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	got, known := a.Remaining(lot.ID, at)
	if !known {
		t.Fatal("Remaining unknown, want known")
	}
	if got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestRemaining_UnknownLot(t *testing.T) {
	db := openLotsTestDB(t)
	a, _ := NewDBAvailability(db, DefaultRolloverHour)

	_, known := a.Remaining(999, time.Now())
	if known {
		t.Fatal("Remaining for missing lot should be unknown")
	}
}

func TestRemaining_CachesAnswer(t *testing.T) {
	db := openLotsTestDB(t)
	denver := denverTime(t)
	lot := seedLot(t, db, "BZN1", "bozeman-north", "Bozeman North", "Bozeman", "MT", 5)
	a, _ := NewDBAvailability(db, DefaultRolloverHour)

	at := time.Date(2026, 9, 1, 14, 0, 0, 0, denver)
	if got, _ := a.Remaining(lot.ID, at); got != 5 {
		t.Fatalf("Remaining = %d, want 5", got)
	}

	// A new booking within the TTL is not visible through the cache.
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, denver)
	seedBooking(t, db, lot.ID, models.BookingConfirmed, day, day.AddDate(0, 0, 1))
	if got, _ := a.Remaining(lot.ID, at); got != 5 {
		t.Errorf("cached Remaining = %d, want 5", got)
	}
}
