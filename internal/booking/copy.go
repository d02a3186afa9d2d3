package booking

import (
	"fmt"
	"strings"

	"github.com/dnaclectic/lotline/internal/models"
)

// genericInstructions is used when a lot has no parking instructions
// configured.
const genericInstructions = "Show this text at the gate. Park in any open marked spot."

// ConfirmationMessage composes the post-payment confirmation text:
// lot identity, a map link when the lot has coordinates, the date range,
// the plate on file, and parking instructions.
func ConfirmationMessage(lot *models.Lot, b *models.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You're booked at %s (%s)!\n", lot.Name, lot.Code)
	if lot.HasGeo() {
		fmt.Fprintf(&sb, "Map: https://maps.google.com/?q=%f,%f\n", *lot.Lat, *lot.Lng)
	} else if lot.City != "" {
		loc := lot.City
		if lot.State != "" {
			loc += ", " + lot.State
		}
		fmt.Fprintf(&sb, "Location: %s\n", loc)
	}
	fmt.Fprintf(&sb, "Dates: %s through %s\n", b.StartDate.Format("Mon Jan 2"), b.EndDate.Format("Mon Jan 2"))
	if b.Plate != "" {
		fmt.Fprintf(&sb, "Plate on file: %s\n", b.Plate)
	}
	instructions := lot.Instructions
	if instructions == "" {
		instructions = genericInstructions
	}
	sb.WriteString(instructions)
	return sb.String()
}
