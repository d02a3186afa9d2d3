package convo

import (
	"fmt"
	"strings"

	"github.com/dnaclectic/lotline/internal/models"
	"github.com/dnaclectic/lotline/internal/pricing"
)

// Static reply texts. Keep each under one SMS segment-ish where possible;
// carriers split long messages but drivers read short ones.
const (
	msgWelcome = "Welcome to LotLine overnight truck parking. Where do you want to park? Send a city (like \"Bozeman MT\") or a lot code if you have one."

	msgNoConversation = "Text BOOK to start an overnight parking reservation. Text HELP for other commands."

	msgExpired = "That conversation timed out. Text BOOK to start a new reservation."

	msgHelp = "LotLine commands: BOOK start a reservation, CANCEL stop the current one, RESET start over, SUPPORT reach a human, MENU see this list, DEMO see an example."

	msgMenu = "BOOK - reserve parking\nCANCEL - cancel current reservation\nRESET - start over\nSUPPORT - talk to a human\nHELP - command help\nDEMO - example booking"

	msgDemo = "Example: you text BOOK, then \"Bozeman MT\", then your name, truck type, make/model, plate, and how long you're staying. We text back a payment link and your gate instructions."

	msgSupportAck = "Got it - we've passed your message to the LotLine team. Someone will text or call you back shortly."

	msgCancelled = "Your reservation was cancelled. Text BOOK any time to start a new one."

	msgNothingToCancel = "You don't have a reservation in progress. Text BOOK to start one."

	msgLocationRetry = "We couldn't find a lot there. Try a city and state (like \"Ogallala NE\") or a lot code."

	msgNameRetry = "Please send your full name as it should appear on the reservation."

	msgAskTruckType = "What are you driving?\n1. Semi\n2. Bobtail\n3. Hotshot\n4. Other"

	msgTruckRetry = "Please reply with a number 1-4:\n1. Semi\n2. Bobtail\n3. Hotshot\n4. Other"

	msgAskMakeModel = "What's the make and model? (like \"Freightliner Cascadia\")"

	msgPlateRetry = "Please send the license plate, including the state if it's on the plate (like \"MT 7-XYZ456\")."

	msgNightsPrompt = "How many nights? Reply with a number from 1 to 90."

	msgStayRetry = "Please reply 1, 2, 3, or 4:\n1. Tonight only\n2. One week\n3. One month\n4. Custom number of nights"

	msgSummaryRetry = "Please reply YES to confirm or NO to cancel."

	msgPaymentReminder = "Your reservation is waiting on payment. Reply LINK to get the payment link again, or CANCEL to cancel."

	msgAlreadyConfirmed = "Good news - that reservation is already paid and confirmed. Check your texts for gate instructions."

	msgGenericError = "Sorry, something went wrong on our end. Please try again in a minute, or text SUPPORT to reach a human."
)

func soldOutMessage(lotName string) string {
	return fmt.Sprintf("%s is sold out for tonight. Try another city or lot code.", lotName)
}

func askNameMessage(lotName string) string {
	return fmt.Sprintf("%s - got it. What's your full name?", lotName)
}

func askPlateMessage() string {
	return "What's the license plate? Include the state if it's on the plate."
}

// lotChoiceMessage numbers candidates 1-based for the driver to pick from.
func lotChoiceMessage(found []models.Lot) string {
	var b strings.Builder
	b.WriteString("We found a few lots. Reply with a number:\n")
	for i, lot := range found {
		fmt.Fprintf(&b, "%d. %s (%s, %s) - %s/night\n", i+1, lot.Name, lot.City, lot.State, dollars(lot.NightlyRateCents))
	}
	b.WriteString("Or send a different city.")
	return b.String()
}

func choiceRetryMessage(n int) string {
	return fmt.Sprintf("Please reply with a number from 1 to %d, or send a different city.", n)
}

func stayOptionMessage(lot *models.Lot) string {
	var b strings.Builder
	b.WriteString("How long are you staying?\n")
	fmt.Fprintf(&b, "1. Tonight only - %s\n", dollars(pricing.Calculate(lot, models.StayOvernight, 1).TotalCents))
	fmt.Fprintf(&b, "2. One week - %s\n", dollars(pricing.Calculate(lot, models.StayWeekly, 7).TotalCents))
	fmt.Fprintf(&b, "3. One month - %s\n", dollars(pricing.Calculate(lot, models.StayMonthly, 30).TotalCents))
	b.WriteString("4. Custom number of nights")
	return b.String()
}

func summaryMessage(conv *models.Conversation, lot *models.Lot, q pricing.Quote) string {
	nights := "night"
	if conv.Nights != 1 {
		nights = "nights"
	}
	return fmt.Sprintf(
		"Here's your reservation:\n%s - %s, %s\n%s\n%s: %s, plate %s\n%d %s - total %s\nReply YES to get your payment link, or NO to cancel.",
		lot.Name, lot.City, lot.State,
		conv.DriverName,
		truckTypeLabel(conv.TruckType), conv.MakeModel, conv.Plate,
		conv.Nights, nights, dollars(q.TotalCents),
	)
}

func paymentLinkMessage(url string) string {
	return fmt.Sprintf("You're almost done - pay here to lock in your spot: %s\nWe'll text your gate instructions as soon as payment goes through.", url)
}

func truckTypeLabel(t string) string {
	switch t {
	case models.TruckSemi:
		return "Semi"
	case models.TruckBobtail:
		return "Bobtail"
	case models.TruckHotshot:
		return "Hotshot"
	default:
		return "Truck"
	}
}

// dollars renders integer cents as $X or $X.YY.
func dollars(cents int64) string {
	if cents%100 == 0 {
		return fmt.Sprintf("$%d", cents/100)
	}
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
