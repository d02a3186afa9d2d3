package pricing

import (
	"testing"

	"github.com/dnaclectic/lotline/internal/models"
)

func testLot(nightly, weekly, monthly int64) *models.Lot {
	return &models.Lot{
		Code:             "TST",
		Name:             "Test Lot",
		NightlyRateCents: nightly,
		WeeklyRateCents:  weekly,
		MonthlyRateCents: monthly,
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name         string
		lot          *models.Lot
		stayType     string
		nights       int
		wantSubtotal int64
	}{
		{
			name:         "overnight single night",
			lot:          testLot(2500, 0, 0),
			stayType:     models.StayOvernight,
			nights:       1,
			wantSubtotal: 2500,
		},
		{
			name:         "weekly with flat rate",
			lot:          testLot(2500, 15000, 0),
			stayType:     models.StayWeekly,
			nights:       7,
			wantSubtotal: 15000,
		},
		{
			name:         "weekly without flat rate falls back to per-night",
			lot:          testLot(2500, 0, 0),
			stayType:     models.StayWeekly,
			nights:       7,
			wantSubtotal: 17500,
		},
		{
			name:         "monthly with flat rate",
			lot:          testLot(2500, 15000, 50000),
			stayType:     models.StayMonthly,
			nights:       30,
			wantSubtotal: 50000,
		},
		{
			name:         "monthly without flat rate falls back to per-night",
			lot:          testLot(2000, 0, 0),
			stayType:     models.StayMonthly,
			nights:       30,
			wantSubtotal: 60000,
		},
		{
			name:         "custom always multiplies even at 7 nights",
			lot:          testLot(2500, 15000, 0),
			stayType:     models.StayCustom,
			nights:       7,
			wantSubtotal: 17500,
		},
		{
			name:         "custom 90 nights",
			lot:          testLot(1000, 0, 25000),
			stayType:     models.StayCustom,
			nights:       90,
			wantSubtotal: 90000,
		},
		{
			name:         "zero nights clamps to one",
			lot:          testLot(2500, 0, 0),
			stayType:     models.StayOvernight,
			nights:       0,
			wantSubtotal: 2500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Calculate(tt.lot, tt.stayType, tt.nights)
			if q.SubtotalCents != tt.wantSubtotal {
				t.Errorf("SubtotalCents = %d, want %d", q.SubtotalCents, tt.wantSubtotal)
			}
			if q.NightlyRateCents != tt.lot.NightlyRateCents {
				t.Errorf("NightlyRateCents = %d, want %d", q.NightlyRateCents, tt.lot.NightlyRateCents)
			}
			if q.DepositHoldCents != 0 {
				t.Errorf("DepositHoldCents = %d, want 0", q.DepositHoldCents)
			}
			if q.TotalCents != q.SubtotalCents+q.DepositHoldCents {
				t.Errorf("TotalCents = %d, want subtotal+deposit = %d", q.TotalCents, q.SubtotalCents+q.DepositHoldCents)
			}
		})
	}
}

func TestNightsFor(t *testing.T) {
	tests := []struct {
		stayType string
		want     int
	}{
		{models.StayOvernight, 1},
		{models.StayWeekly, 7},
		{models.StayMonthly, 30},
		{models.StayCustom, 0},
		{"bogus", 0},
	}
	for _, tt := range tests {
		if got := NightsFor(tt.stayType); got != tt.want {
			t.Errorf("NightsFor(%q) = %d, want %d", tt.stayType, got, tt.want)
		}
	}
}
