// Package booking creates bookings from confirmed conversations and
// finalizes them when payment events arrive.
package booking

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/dnaclectic/lotline/internal/alert"
	"github.com/dnaclectic/lotline/internal/lots"
	"github.com/dnaclectic/lotline/internal/models"
	"github.com/dnaclectic/lotline/internal/payments"
	"github.com/dnaclectic/lotline/internal/pricing"
	"github.com/dnaclectic/lotline/internal/sms"
	"github.com/dnaclectic/lotline/internal/store"
	"github.com/google/uuid"
)

// DefaultReviewNudgeHour is the lot-local hour for next-day review nudges.
const DefaultReviewNudgeHour = 20

// ConfirmResult reports what a payment event application did.
type ConfirmResult int

const (
	// ConfirmApplied means the booking moved to confirmed and the
	// confirmation side effects ran.
	ConfirmApplied ConfirmResult = iota
	// ConfirmAlreadyDone means the event was a redelivery; nothing was
	// mutated and nothing was sent.
	ConfirmAlreadyDone
	// ConfirmUnknownSession means no booking matches the event. The
	// caller acknowledges anyway; an operator alert has been raised.
	ConfirmUnknownSession
)

// Finalizer orchestrates booking creation and payment finalization.
type Finalizer struct {
	store          *store.Store
	lots           *lots.Resolver
	provider       payments.Provider
	sender         sms.Sender
	alerts         alert.Notifier
	rolloverHour   int
	reviewHour     int
	nudgeTestDelay time.Duration
	now            func() time.Time
}

// FinalizerOpts holds parameters for creating a Finalizer.
type FinalizerOpts struct {
	Store          *store.Store
	Lots           *lots.Resolver
	Provider       payments.Provider
	Sender         sms.Sender
	Alerts         alert.Notifier       // optional; defaults to alert.Noop
	RolloverHour   int                  // defaults to lots.DefaultRolloverHour
	ReviewHour     int                  // defaults to DefaultReviewNudgeHour
	NudgeTestDelay time.Duration        // non-production override; 0 = off
	Now            func() time.Time     // defaults to time.Now
}

// NewFinalizer creates a Finalizer.
func NewFinalizer(opts FinalizerOpts) (*Finalizer, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("booking: finalizer: store is required")
	}
	if opts.Lots == nil {
		return nil, fmt.Errorf("booking: finalizer: lot resolver is required")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("booking: finalizer: payment provider is required")
	}
	if opts.Sender == nil {
		return nil, fmt.Errorf("booking: finalizer: sms sender is required")
	}
	alerts := opts.Alerts
	if alerts == nil {
		alerts = alert.Noop{}
	}
	rollover := opts.RolloverHour
	if rollover == 0 {
		rollover = lots.DefaultRolloverHour
	}
	review := opts.ReviewHour
	if review == 0 {
		review = DefaultReviewNudgeHour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Finalizer{
		store:          opts.Store,
		lots:           opts.Lots,
		provider:       opts.Provider,
		sender:         opts.Sender,
		alerts:         alerts,
		rolloverHour:   rollover,
		reviewHour:     review,
		nudgeTestDelay: opts.NudgeTestDelay,
		now:            now,
	}, nil
}

// Create builds a booking from a conversation that just confirmed its
// summary. The conversation and lot are reloaded fresh and pricing is
// recomputed from current lot rates rather than the quote shown earlier.
// On success the conversation is linked to the booking; the caller moves
// it to the payment-wait state and sends the returned checkout URL.
func (f *Finalizer) Create(ctx context.Context, conversationID uint) (*models.Booking, *payments.Session, error) {
	conv, err := f.store.ReloadConversation(conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("booking: reload conversation: %w", err)
	}
	if conv.LotID == nil {
		return nil, nil, fmt.Errorf("booking: conversation %d has no lot", conversationID)
	}
	lot, err := f.lots.Get(*conv.LotID)
	if err != nil {
		return nil, nil, fmt.Errorf("booking: reload lot: %w", err)
	}

	quote := pricing.Calculate(lot, conv.StayType, conv.Nights)
	start, end := lots.DateRange(f.now(), lots.TimeZone(lot), f.rolloverHour, conv.Nights)

	b := &models.Booking{
		PublicID:         uuid.NewString(),
		ConversationID:   conv.ID,
		LotID:            lot.ID,
		DriverName:       conv.DriverName,
		TruckType:        conv.TruckType,
		MakeModel:        conv.MakeModel,
		Plate:            conv.Plate,
		StayType:         conv.StayType,
		Nights:           conv.Nights,
		NightlyRateCents: quote.NightlyRateCents,
		SubtotalCents:    quote.SubtotalCents,
		DepositHoldCents: quote.DepositHoldCents,
		TotalCents:       quote.TotalCents,
		Currency:         "USD",
		StartDate:        start,
		EndDate:          end,
		Status:           models.BookingPendingPayment,
	}
	if err := f.store.CreateBooking(b); err != nil {
		return nil, nil, err
	}

	sess, err := f.provider.CreateSession(ctx, payments.CreateSessionParams{
		AmountCents: b.TotalCents,
		Currency:    b.Currency,
		Description: fmt.Sprintf("%d night(s) at %s", b.Nights, lot.Name),
		Metadata: map[string]string{
			"booking_id": strconv.FormatUint(uint64(b.ID), 10),
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("booking: create checkout session: %w", err)
	}
	b.CheckoutSessionID = sess.ID
	if err := f.store.SaveBooking(b); err != nil {
		return nil, nil, err
	}

	conv.BookingID = &b.ID
	conv.QuotedTotalCents = b.TotalCents
	if err := f.store.SaveConversation(conv); err != nil {
		return nil, nil, err
	}

	return b, sess, nil
}

// PaymentLink re-fetches the checkout session for a pending booking, for
// the resend path. Returns the hosted URL.
func (f *Finalizer) PaymentLink(ctx context.Context, b *models.Booking) (string, error) {
	sess, err := f.provider.GetSession(ctx, b.CheckoutSessionID)
	if err != nil {
		return "", fmt.Errorf("booking: fetch session: %w", err)
	}
	return sess.URL, nil
}

// ConfirmCheckout applies a checkout-completion event. It is idempotent:
// a redelivered event for an already-confirmed booking mutates nothing
// and sends nothing. An unknown session raises an operator alert and is
// otherwise a no-op so the webhook can still acknowledge.
func (f *Finalizer) ConfirmCheckout(ctx context.Context, evt *payments.Event) (ConfirmResult, error) {
	b, err := f.store.BookingByCheckoutSession(evt.Session.ID)
	if err != nil {
		return ConfirmUnknownSession, err
	}
	if b == nil {
		f.alertOp(ctx, "payment webhook: unknown checkout session",
			fmt.Sprintf("event %s references session %s with no matching booking", evt.ID, evt.Session.ID))
		return ConfirmUnknownSession, nil
	}
	if b.Status == models.BookingConfirmed {
		return ConfirmAlreadyDone, nil
	}

	now := f.now()
	b.Status = models.BookingConfirmed
	b.PaymentIntentID = evt.Session.PaymentIntent
	b.ConfirmedAt = &now
	if err := f.store.SaveBooking(b); err != nil {
		return ConfirmApplied, err
	}

	conv, err := f.store.ReloadConversation(b.ConversationID)
	if err != nil {
		f.alertOp(ctx, "confirm booking: conversation reload failed",
			fmt.Sprintf("booking %d: %v", b.ID, err))
	} else if err := f.store.Deactivate(conv, "completed"); err != nil {
		log.Printf("booking: deactivate conversation %d: %v", conv.ID, err)
	}

	lot, err := f.lots.Get(b.LotID)
	if err != nil {
		f.alertOp(ctx, "confirm booking: lot reload failed",
			fmt.Sprintf("booking %d lot %d: %v", b.ID, b.LotID, err))
		return ConfirmApplied, nil
	}

	phone := ""
	if conv != nil {
		phone = conv.Phone
	}
	if phone != "" {
		text := ConfirmationMessage(lot, b)
		if err := f.sender.Send(ctx, phone, text); err != nil {
			log.Printf("booking: send confirmation for %d: %v", b.ID, err)
			f.alertOp(ctx, "confirm booking: confirmation send failed",
				fmt.Sprintf("booking %d to %s: %v", b.ID, phone, err))
		}
		if err := f.store.LogOutbound(phone, text, &b.ConversationID); err != nil {
			log.Printf("booking: log confirmation for %d: %v", b.ID, err)
		}

		nudge := &models.ScheduledMessage{
			BookingID: b.ID,
			LotID:     lot.ID,
			Phone:     phone,
			Kind:      models.KindReviewNudge,
			SendAt:    f.nudgeSendAt(lot, now),
		}
		if err := f.store.EnqueueScheduled(nudge); err != nil {
			log.Printf("booking: enqueue review nudge for %d: %v", b.ID, err)
		}
	}

	return ConfirmApplied, nil
}

// ExpireCheckout applies a checkout-expiry event: the pending booking is
// abandoned and its conversation closed out. Idempotent by the same
// status guard as confirmation.
func (f *Finalizer) ExpireCheckout(ctx context.Context, evt *payments.Event) error {
	b, err := f.store.BookingByCheckoutSession(evt.Session.ID)
	if err != nil {
		return err
	}
	if b == nil || b.Status != models.BookingPendingPayment {
		return nil
	}
	b.Status = models.BookingAbandoned
	if err := f.store.SaveBooking(b); err != nil {
		return err
	}
	conv, err := f.store.ReloadConversation(b.ConversationID)
	if err == nil && conv.Active {
		if err := f.store.Deactivate(conv, "expired"); err != nil {
			log.Printf("booking: deactivate conversation %d: %v", conv.ID, err)
		}
	}
	return nil
}

// nudgeSendAt computes the review nudge send time: lot-local next day at
// the review hour, or a short fixed delay when the test override is set.
func (f *Finalizer) nudgeSendAt(lot *models.Lot, confirmedAt time.Time) time.Time {
	if f.nudgeTestDelay > 0 {
		return confirmedAt.Add(f.nudgeTestDelay)
	}
	loc := lots.TimeZone(lot)
	local := confirmedAt.In(loc)
	next := local.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), f.reviewHour, 0, 0, 0, loc)
}

// alertOp raises an operator alert, logging on failure.
func (f *Finalizer) alertOp(ctx context.Context, subject, body string) {
	if err := f.alerts.Alert(ctx, subject, body); err != nil {
		log.Printf("booking: alert %q: %v", subject, err)
	}
}
