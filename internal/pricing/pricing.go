// Package pricing computes cost breakdowns for a stay at a lot. All
// amounts are integer cents; the calculator is pure.
package pricing

import (
	"github.com/dnaclectic/lotline/internal/models"
)

// Quote is the priced breakdown for one stay.
type Quote struct {
	NightlyRateCents int64
	SubtotalCents    int64
	DepositHoldCents int64
	TotalCents       int64
}

// Calculate prices a stay against a lot's rate schedule. Weekly and
// monthly stays use the lot's flat rate when one is configured and fall
// back to per-night otherwise. Custom stays always price per night, no
// matter how many nights. Deposit hold is a stable zero: booking records
// persist the field, so it is part of the contract even though no lot
// charges one today.
func Calculate(lot *models.Lot, stayType string, nights int) Quote {
	if nights < 1 {
		nights = 1
	}

	subtotal := lot.NightlyRateCents * int64(nights)
	switch stayType {
	case models.StayWeekly:
		if lot.WeeklyRateCents > 0 {
			subtotal = lot.WeeklyRateCents
		}
	case models.StayMonthly:
		if lot.MonthlyRateCents > 0 {
			subtotal = lot.MonthlyRateCents
		}
	}

	const depositHold = 0
	return Quote{
		NightlyRateCents: lot.NightlyRateCents,
		SubtotalCents:    subtotal,
		DepositHoldCents: depositHold,
		TotalCents:       subtotal + depositHold,
	}
}

// NightsFor maps a stay type to its fixed night count. Custom returns 0;
// the caller collects an explicit night count for custom stays.
func NightsFor(stayType string) int {
	switch stayType {
	case models.StayOvernight:
		return 1
	case models.StayWeekly:
		return 7
	case models.StayMonthly:
		return 30
	default:
		return 0
	}
}
