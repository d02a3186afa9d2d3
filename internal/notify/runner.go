// Package notify dispatches scheduled outbound messages, today just the
// day-after review nudges enqueued when a booking is confirmed.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dnaclectic/lotline/internal/alert"
	"github.com/dnaclectic/lotline/internal/models"
	"github.com/dnaclectic/lotline/internal/sms"
	"github.com/dnaclectic/lotline/internal/store"
	"gorm.io/gorm"
)

// DefaultBatchLimit bounds how many due messages one poll dispatches.
const DefaultBatchLimit = 10

// Result classifies the outcome of dispatching one scheduled message.
type Result int

const (
	// ResultSent means the message went out and was marked sent.
	ResultSent Result = iota
	// ResultPermanentFailure means the message can never be sent (missing
	// review link, booking no longer confirmed); it is marked sent with a
	// reason so it will not be retried.
	ResultPermanentFailure
	// ResultTransientFailure means the send attempt failed but the row
	// stays due, so the next poll retries it.
	ResultTransientFailure
)

// Runner polls for due scheduled messages and sends them.
type Runner struct {
	store  *store.Store
	sender sms.Sender
	alerts alert.Notifier
	limit  int
	now    func() time.Time
}

// RunnerOpts configures a Runner.
type RunnerOpts struct {
	Store      *store.Store
	Sender     sms.Sender
	Alerts     alert.Notifier // nil means no operator alerts
	BatchLimit int            // zero means DefaultBatchLimit
	Now        func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOpts) (*Runner, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("notify: runner: store is required")
	}
	if opts.Sender == nil {
		return nil, fmt.Errorf("notify: runner: sender is required")
	}
	if opts.Alerts == nil {
		opts.Alerts = alert.Noop{}
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = DefaultBatchLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{
		store:  opts.Store,
		sender: opts.Sender,
		alerts: opts.Alerts,
		limit:  opts.BatchLimit,
		now:    opts.Now,
	}, nil
}

// DispatchDue sends everything currently due, up to the batch limit, and
// returns how many messages went out. Individual failures never abort
// the batch; each row records its own outcome.
func (r *Runner) DispatchDue(ctx context.Context) (int, error) {
	now := r.now()
	due, err := r.store.DueScheduled(now, r.limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		switch r.dispatch(ctx, &due[i], now) {
		case ResultSent:
			sent++
		case ResultTransientFailure:
			// Left due; the next poll retries it.
		}
	}
	return sent, nil
}

// dispatch sends one scheduled message and records the outcome.
func (r *Runner) dispatch(ctx context.Context, msg *models.ScheduledMessage, now time.Time) Result {
	b, err := r.store.BookingByID(msg.BookingID)
	if err != nil {
		// Only a genuinely gone booking is unrecoverable; a query error
		// leaves the row due for the next poll.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.permanent(ctx, msg, now, fmt.Sprintf("booking %d missing: %v", msg.BookingID, err))
		}
		return r.transient(msg, err)
	}
	// A booking that lost its confirmed status after the nudge was
	// enqueued (refund, operator intervention) must not get a review ask.
	if b.Status != models.BookingConfirmed {
		return r.permanent(ctx, msg, now, fmt.Sprintf("booking %d status %s", b.ID, b.Status))
	}

	var lot models.Lot
	if err := r.store.DB().First(&lot, msg.LotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.permanent(ctx, msg, now, fmt.Sprintf("lot %d missing: %v", msg.LotID, err))
		}
		return r.transient(msg, err)
	}
	if lot.ReviewLink == "" {
		return r.permanent(ctx, msg, now, fmt.Sprintf("lot %s has no review link", lot.Code))
	}

	text := reviewMessage(&lot)
	if err := r.sender.Send(ctx, msg.Phone, text); err != nil {
		return r.transient(msg, err)
	}
	if err := r.store.MarkScheduledSent(msg.ID, now, ""); err != nil {
		log.Printf("notify: mark sent for %d: %v", msg.ID, err)
	}
	if err := r.store.LogOutbound(msg.Phone, text, &b.ConversationID); err != nil {
		log.Printf("notify: log nudge for %d: %v", msg.ID, err)
	}
	return ResultSent
}

// transient records the error on the row but leaves it due, so the next
// poll retries it.
func (r *Runner) transient(msg *models.ScheduledMessage, err error) Result {
	if rerr := r.store.RecordScheduledFailure(msg.ID, err.Error()); rerr != nil {
		log.Printf("notify: record failure for %d: %v", msg.ID, rerr)
	}
	return ResultTransientFailure
}

// permanent marks a message undeliverable so it is never retried, and
// tells the operators why.
func (r *Runner) permanent(ctx context.Context, msg *models.ScheduledMessage, now time.Time, reason string) Result {
	if err := r.store.MarkScheduledSent(msg.ID, now, reason); err != nil {
		log.Printf("notify: mark permanent failure for %d: %v", msg.ID, err)
	}
	if err := r.alerts.Alert(ctx, "scheduled message dropped", fmt.Sprintf("message %d: %s", msg.ID, reason)); err != nil {
		log.Printf("notify: alert: %v", err)
	}
	return ResultPermanentFailure
}

func reviewMessage(lot *models.Lot) string {
	return fmt.Sprintf("Thanks for parking at %s! If the stay went well, a quick review helps other drivers find us: %s", lot.Name, lot.ReviewLink)
}
