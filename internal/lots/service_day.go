package lots

import (
	"time"

	"github.com/dnaclectic/lotline/internal/models"
)

// DefaultRolloverHour is the service-day boundary: bookings made before
// this lot-local hour belong to the previous calendar day, so a 2am
// booking covers the night already in progress instead of "tomorrow".
const DefaultRolloverHour = 8

// ServiceDay returns the service day (midnight, lot-local) that a moment
// belongs to.
func ServiceDay(at time.Time, loc *time.Location, rolloverHour int) time.Time {
	local := at.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if local.Hour() < rolloverHour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// DateRange computes the start and end dates for a stay beginning on the
// service day that contains "at". End is exclusive: start plus nights.
func DateRange(at time.Time, loc *time.Location, rolloverHour, nights int) (time.Time, time.Time) {
	start := ServiceDay(at, loc, rolloverHour)
	return start, start.AddDate(0, 0, nights)
}

// TimeZone loads the lot's timezone, falling back to UTC.
func TimeZone(lot *models.Lot) *time.Location {
	loc, err := time.LoadLocation(lot.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
