// Package convo implements the per-phone conversation state machine that
// walks a driver through the booking flow one text at a time.
package convo

// State is a conversation's position in the booking flow.
type State string

// Flow states, in the order a driver moves through them, followed by the
// terminal states a conversation can be forced into from anywhere.
const (
	StateAwaitingLocation     State = "awaiting_location_or_lot_code"
	StateAwaitingLotChoice    State = "awaiting_lot_choice"
	StateAwaitingName         State = "awaiting_name"
	StateAwaitingTruckType    State = "awaiting_truck_type"
	StateAwaitingMakeModel    State = "awaiting_make_model"
	StateAwaitingPlate        State = "awaiting_plate"
	StateAwaitingStayOption   State = "awaiting_stay_option"
	StateAwaitingCustomNights State = "awaiting_custom_nights"
	StateAwaitingSummary      State = "awaiting_summary_confirmation"
	StateAwaitingPayment      State = "awaiting_payment"

	StateCancelled State = "cancelled"
	StateExpired   State = "expired"
	StateCompleted State = "completed"
)

// Terminal reports whether the state ends a conversation.
func (s State) Terminal() bool {
	switch s {
	case StateCancelled, StateExpired, StateCompleted:
		return true
	}
	return false
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateAwaitingLocation, StateAwaitingLotChoice, StateAwaitingName,
		StateAwaitingTruckType, StateAwaitingMakeModel, StateAwaitingPlate,
		StateAwaitingStayOption, StateAwaitingCustomNights, StateAwaitingSummary,
		StateAwaitingPayment, StateCancelled, StateExpired, StateCompleted:
		return true
	}
	return false
}
