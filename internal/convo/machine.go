package convo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/dnaclectic/lotline/internal/alert"
	"github.com/dnaclectic/lotline/internal/lots"
	"github.com/dnaclectic/lotline/internal/models"
	"github.com/dnaclectic/lotline/internal/payments"
	"github.com/dnaclectic/lotline/internal/pricing"
	"github.com/dnaclectic/lotline/internal/sms"
	"github.com/dnaclectic/lotline/internal/store"
)

// DefaultIdleExpiry is how long a conversation may sit idle before the
// next inbound message treats it as dead.
const DefaultIdleExpiry = 30 * time.Minute

// Finalizer creates bookings and re-issues payment links. Satisfied by
// booking.Finalizer; an interface here so tests can fake it.
type Finalizer interface {
	Create(ctx context.Context, conversationID uint) (*models.Booking, *payments.Session, error)
	PaymentLink(ctx context.Context, b *models.Booking) (string, error)
}

// Machine drives booking conversations. One inbound message in, one
// reply out; all conversation state lives in the database between
// messages, so any process instance can handle any message.
type Machine struct {
	store      *store.Store
	lots       *lots.Resolver
	avail      lots.Availability
	finalizer  Finalizer
	alerts     alert.Notifier
	idleExpiry time.Duration
	now        func() time.Time
}

// MachineOpts configures a Machine.
type MachineOpts struct {
	Store        *store.Store
	Lots         *lots.Resolver
	Availability lots.Availability
	Finalizer    Finalizer
	Alerts       alert.Notifier // nil means no operator alerts
	IdleExpiry   time.Duration  // zero means DefaultIdleExpiry
	Now          func() time.Time
}

// NewMachine creates a Machine.
func NewMachine(opts MachineOpts) (*Machine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("convo: machine: store is required")
	}
	if opts.Lots == nil {
		return nil, fmt.Errorf("convo: machine: lot resolver is required")
	}
	if opts.Availability == nil {
		return nil, fmt.Errorf("convo: machine: availability is required")
	}
	if opts.Finalizer == nil {
		return nil, fmt.Errorf("convo: machine: finalizer is required")
	}
	if opts.Alerts == nil {
		opts.Alerts = alert.Noop{}
	}
	if opts.IdleExpiry <= 0 {
		opts.IdleExpiry = DefaultIdleExpiry
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Machine{
		store:      opts.Store,
		lots:       opts.Lots,
		avail:      opts.Availability,
		finalizer:  opts.Finalizer,
		alerts:     opts.Alerts,
		idleExpiry: opts.IdleExpiry,
		now:        opts.Now,
	}, nil
}

// HandleInbound processes one inbound message and returns the reply
// text. It never returns an error: anything that goes wrong internally
// is alerted and turned into an apology the driver can act on.
func (m *Machine) HandleInbound(ctx context.Context, in sms.Inbound) string {
	now := m.now()

	conv, err := m.store.ActiveConversation(in.From)
	if err != nil {
		m.alertOp(ctx, "conversation lookup failed", fmt.Sprintf("phone %s: %v", in.From, err))
		return msgGenericError
	}

	// Inbound messages are logged no matter what happens next; the SMS
	// channel is the only record of what the driver actually sent.
	var convID *uint
	if conv != nil {
		convID = &conv.ID
	}
	if err := m.store.LogInbound(in.From, in.Body, in.MessageSID, convID); err != nil {
		log.Printf("convo: log inbound from %s: %v", in.From, err)
	}

	expired := false
	if conv != nil && now.Sub(conv.LastInboundAt) > m.idleExpiry {
		if err := m.expire(conv); err != nil {
			m.alertOp(ctx, "conversation expiry failed", fmt.Sprintf("conversation %d: %v", conv.ID, err))
			return msgGenericError
		}
		conv = nil
		expired = true
	}

	reply, after := m.dispatch(ctx, conv, strings.TrimSpace(in.Body), in.From, now, expired)

	var afterID *uint
	if after != nil {
		afterID = &after.ID
	}
	if err := m.store.LogOutbound(in.From, reply, afterID); err != nil {
		log.Printf("convo: log outbound to %s: %v", in.From, err)
	}
	return reply
}

// dispatch routes one trimmed message: global commands first, then the
// current state's handler. Returns the reply and the conversation the
// message ended up belonging to (nil when none is active afterward).
func (m *Machine) dispatch(ctx context.Context, conv *models.Conversation, text, phone string, now time.Time, expired bool) (string, *models.Conversation) {
	switch strings.ToUpper(text) {
	case "BOOK":
		fresh, err := m.begin(phone, now)
		if err != nil {
			m.alertOp(ctx, "conversation create failed", fmt.Sprintf("phone %s: %v", phone, err))
			return msgGenericError, nil
		}
		return msgWelcome, fresh
	case "HELP":
		return msgHelp, conv
	case "MENU":
		return msgMenu, conv
	case "DEMO":
		return msgDemo, conv
	case "CANCEL", "STOP":
		if conv == nil {
			return msgNothingToCancel, nil
		}
		if err := m.cancel(conv); err != nil {
			m.alertOp(ctx, "conversation cancel failed", fmt.Sprintf("conversation %d: %v", conv.ID, err))
			return msgGenericError, conv
		}
		return msgCancelled, conv
	case "RESET":
		if conv == nil {
			return msgNothingToCancel, nil
		}
		if err := m.cancel(conv); err != nil {
			m.alertOp(ctx, "conversation reset failed", fmt.Sprintf("conversation %d: %v", conv.ID, err))
			return msgGenericError, conv
		}
		fresh, err := m.begin(phone, now)
		if err != nil {
			m.alertOp(ctx, "conversation create failed", fmt.Sprintf("phone %s: %v", phone, err))
			return msgGenericError, nil
		}
		return msgWelcome, fresh
	case "SUPPORT":
		m.alertOp(ctx, "support request", fmt.Sprintf("phone %s asked for support: %q", phone, text))
		return msgSupportAck, conv
	}

	if conv == nil {
		if expired {
			return msgExpired, nil
		}
		return msgNoConversation, nil
	}

	conv.LastInboundAt = now
	out := m.handleState(ctx, conv, text)
	if err := m.persist(conv, out); err != nil {
		m.alertOp(ctx, "conversation save failed", fmt.Sprintf("conversation %d: %v", conv.ID, err))
		return msgGenericError, conv
	}
	return out.reply, conv
}

// outcome is what a state handler decides: the reply, the next state,
// and any terminal transition. Handlers mutate the conversation's
// accumulated fields directly; persistence is the machine's job.
type outcome struct {
	reply  string
	next   State // empty means stay in the current state
	finish State // non-empty terminal state wins over next
}

// handleState runs the handler for the conversation's current state.
// The switch is exhaustive over non-terminal states; terminal states
// never reach here because terminal conversations are inactive.
func (m *Machine) handleState(ctx context.Context, conv *models.Conversation, text string) outcome {
	switch State(conv.State) {
	case StateAwaitingLocation:
		return m.handleLocation(conv, text)
	case StateAwaitingLotChoice:
		return m.handleLotChoice(conv, text)
	case StateAwaitingName:
		return m.handleName(conv, text)
	case StateAwaitingTruckType:
		return m.handleTruckType(conv, text)
	case StateAwaitingMakeModel:
		return m.handleMakeModel(conv, text)
	case StateAwaitingPlate:
		return m.handlePlate(conv, text)
	case StateAwaitingStayOption:
		return m.handleStayOption(conv, text)
	case StateAwaitingCustomNights:
		return m.handleCustomNights(conv, text)
	case StateAwaitingSummary:
		return m.handleSummary(ctx, conv, text)
	case StateAwaitingPayment:
		return m.handlePayment(ctx, conv, text)
	default:
		// Unknown state in the database. Don't guess; make the driver
		// restart and tell the operators.
		m.alertOp(ctx, "conversation in unknown state", fmt.Sprintf("conversation %d state %q", conv.ID, conv.State))
		return outcome{reply: msgExpired, finish: StateExpired}
	}
}

func (m *Machine) handleLocation(conv *models.Conversation, text string) outcome {
	found, err := m.lots.Resolve(text)
	if err != nil {
		log.Printf("convo: resolve %q: %v", text, err)
		return outcome{reply: msgGenericError}
	}

	switch len(found) {
	case 0:
		return outcome{reply: msgLocationRetry}
	case 1:
		lot := found[0]
		if !m.hasRoom(lot.ID, conv.LastInboundAt) {
			return outcome{reply: soldOutMessage(lot.Name)}
		}
		conv.LocationInput = text
		conv.LotID = &lot.ID
		conv.CandidateLots = ""
		return outcome{reply: askNameMessage(lot.Name), next: StateAwaitingName}
	default:
		ids := make([]uint, len(found))
		for i, lot := range found {
			ids[i] = lot.ID
		}
		raw, err := json.Marshal(ids)
		if err != nil {
			return outcome{reply: msgGenericError}
		}
		conv.LocationInput = text
		conv.CandidateLots = string(raw)
		return outcome{reply: lotChoiceMessage(found), next: StateAwaitingLotChoice}
	}
}

func (m *Machine) handleLotChoice(conv *models.Conversation, text string) outcome {
	var ids []uint
	if err := json.Unmarshal([]byte(conv.CandidateLots), &ids); err != nil || len(ids) == 0 {
		// Candidate list lost or corrupt; fall back to asking again.
		conv.CandidateLots = ""
		return outcome{reply: msgLocationRetry, next: StateAwaitingLocation}
	}

	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > len(ids) {
		// A non-numeric reply might be a fresh location attempt.
		if found, rerr := m.lots.Resolve(text); rerr == nil && len(found) > 0 {
			conv.State = string(StateAwaitingLocation)
			return m.handleLocation(conv, text)
		}
		return outcome{reply: choiceRetryMessage(len(ids))}
	}

	lot, err := m.lots.Get(ids[n-1])
	if err != nil {
		log.Printf("convo: candidate lot %d: %v", ids[n-1], err)
		return outcome{reply: msgGenericError}
	}
	if !m.hasRoom(lot.ID, conv.LastInboundAt) {
		return outcome{reply: soldOutMessage(lot.Name)}
	}
	conv.LotID = &lot.ID
	conv.CandidateLots = ""
	return outcome{reply: askNameMessage(lot.Name), next: StateAwaitingName}
}

func (m *Machine) handleName(conv *models.Conversation, text string) outcome {
	if len(text) < 2 {
		return outcome{reply: msgNameRetry}
	}
	conv.DriverName = text
	return outcome{reply: msgAskTruckType, next: StateAwaitingTruckType}
}

func (m *Machine) handleTruckType(conv *models.Conversation, text string) outcome {
	types := map[string]string{
		"1": models.TruckSemi,
		"2": models.TruckBobtail,
		"3": models.TruckHotshot,
		"4": models.TruckOther,
	}
	t, ok := types[text]
	if !ok {
		return outcome{reply: msgTruckRetry}
	}
	conv.TruckType = t
	return outcome{reply: msgAskMakeModel, next: StateAwaitingMakeModel}
}

func (m *Machine) handleMakeModel(conv *models.Conversation, text string) outcome {
	if len(text) < 2 {
		return outcome{reply: msgAskMakeModel}
	}
	conv.MakeModel = text
	return outcome{reply: askPlateMessage(), next: StateAwaitingPlate}
}

func (m *Machine) handlePlate(conv *models.Conversation, text string) outcome {
	if len(text) < 2 {
		return outcome{reply: msgPlateRetry}
	}
	conv.Plate = text
	lot, err := m.lots.Get(*conv.LotID)
	if err != nil {
		log.Printf("convo: lot %d for stay options: %v", *conv.LotID, err)
		return outcome{reply: msgGenericError}
	}
	return outcome{reply: stayOptionMessage(lot), next: StateAwaitingStayOption}
}

func (m *Machine) handleStayOption(conv *models.Conversation, text string) outcome {
	stays := map[string]string{
		"1": models.StayOvernight,
		"2": models.StayWeekly,
		"3": models.StayMonthly,
	}
	if text == "4" {
		conv.StayType = models.StayCustom
		return outcome{reply: msgNightsPrompt, next: StateAwaitingCustomNights}
	}
	stay, ok := stays[text]
	if !ok {
		return outcome{reply: msgStayRetry}
	}
	conv.StayType = stay
	conv.Nights = pricing.NightsFor(stay)
	return m.quoteSummary(conv)
}

func (m *Machine) handleCustomNights(conv *models.Conversation, text string) outcome {
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > 90 {
		return outcome{reply: msgNightsPrompt}
	}
	conv.Nights = n
	return m.quoteSummary(conv)
}

// quoteSummary prices the stay and moves to summary confirmation.
func (m *Machine) quoteSummary(conv *models.Conversation) outcome {
	lot, err := m.lots.Get(*conv.LotID)
	if err != nil {
		log.Printf("convo: lot %d for quote: %v", *conv.LotID, err)
		return outcome{reply: msgGenericError}
	}
	q := pricing.Calculate(lot, conv.StayType, conv.Nights)
	conv.QuotedTotalCents = q.TotalCents
	return outcome{reply: summaryMessage(conv, lot, q), next: StateAwaitingSummary}
}

func (m *Machine) handleSummary(ctx context.Context, conv *models.Conversation, text string) outcome {
	switch strings.ToUpper(text) {
	case "YES", "Y":
		b, sess, err := m.finalizer.Create(ctx, conv.ID)
		if err != nil {
			m.alertOp(ctx, "booking create failed", fmt.Sprintf("conversation %d: %v", conv.ID, err))
			return outcome{reply: msgGenericError}
		}
		conv.BookingID = &b.ID
		conv.QuotedTotalCents = b.TotalCents
		return outcome{reply: paymentLinkMessage(sess.URL), next: StateAwaitingPayment}
	case "NO", "N":
		return outcome{reply: msgCancelled, finish: StateCancelled}
	default:
		return outcome{reply: msgSummaryRetry}
	}
}

func (m *Machine) handlePayment(ctx context.Context, conv *models.Conversation, text string) outcome {
	switch strings.ToUpper(text) {
	case "LINK", "PAY", "PAYMENT", "YES", "Y", "RESEND":
	default:
		return outcome{reply: msgPaymentReminder}
	}

	if conv.BookingID == nil {
		return outcome{reply: msgPaymentReminder}
	}
	b, err := m.store.BookingByID(*conv.BookingID)
	if err != nil {
		log.Printf("convo: booking %d for resend: %v", *conv.BookingID, err)
		return outcome{reply: msgGenericError}
	}
	if b.Status == models.BookingConfirmed {
		return outcome{reply: msgAlreadyConfirmed}
	}
	url, err := m.finalizer.PaymentLink(ctx, b)
	if err != nil {
		m.alertOp(ctx, "payment link resend failed", fmt.Sprintf("booking %d: %v", b.ID, err))
		return outcome{reply: msgGenericError}
	}
	return outcome{reply: paymentLinkMessage(url)}
}

// begin starts a fresh conversation, displacing any active one.
func (m *Machine) begin(phone string, now time.Time) (*models.Conversation, error) {
	return m.store.CreateConversation(phone, string(StateAwaitingLocation), now)
}

// cancel abandons any pending booking and terminates the conversation.
func (m *Machine) cancel(conv *models.Conversation) error {
	if err := m.store.AbandonPendingForConversation(conv.ID); err != nil {
		return err
	}
	return m.store.Deactivate(conv, string(StateCancelled))
}

func (m *Machine) expire(conv *models.Conversation) error {
	if err := m.store.AbandonPendingForConversation(conv.ID); err != nil {
		return err
	}
	return m.store.Deactivate(conv, string(StateExpired))
}

// persist applies a handler outcome to the conversation row.
func (m *Machine) persist(conv *models.Conversation, out outcome) error {
	if out.finish != "" {
		if out.finish == StateCancelled {
			return m.cancel(conv)
		}
		return m.store.Deactivate(conv, string(out.finish))
	}
	if out.next != "" {
		conv.State = string(out.next)
	}
	return m.store.SaveConversation(conv)
}

// hasRoom checks advisory capacity for the lot. Unknown counts do not
// block the driver; availability is a filter, not a gate.
func (m *Machine) hasRoom(lotID uint, at time.Time) bool {
	remaining, known := m.avail.Remaining(lotID, at)
	return !known || remaining > 0
}

func (m *Machine) alertOp(ctx context.Context, subject, body string) {
	if err := m.alerts.Alert(ctx, subject, body); err != nil {
		log.Printf("convo: alert %q: %v", subject, err)
	}
}
