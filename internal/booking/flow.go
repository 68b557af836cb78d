// Package booking drives the guided SMS exchange that turns an
// accepted quote into a reservation: a per-conversation state machine
// collecting date, time, address, and email, then confirming and
// pushing the booking to the cleaning site.
package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brooklynmaids/sms-concierge/internal/intent"
	"github.com/brooklynmaids/sms-concierge/pkg/logging"
)

// Step names one state of the booking flow.
type Step string

const (
	StepAskDate    Step = "ask_date"
	StepAskTime    Step = "ask_time"
	StepAskAddress Step = "ask_address"
	StepAskEmail   Step = "ask_email"
	StepConfirm    Step = "confirm"
)

// QuoteDetails is the priced context a flow was started from.
type QuoteDetails struct {
	Bedrooms   string
	Bathrooms  string
	Service    intent.ServiceType
	Addons     []intent.Addon
	TotalPrice int
}

type flowState struct {
	step      Step
	quote     QuoteDetails
	date      string
	timeOfDay string
	address   string
	email     string
	startedAt time.Time
}

// Creator performs the external booking-creation call. Failures are
// logged, never shown to the customer.
type Creator interface {
	Create(ctx context.Context, req CreateRequest) (CreateResult, error)
}

// Flow holds active booking conversations. States live in memory with
// no expiry; an abandoned flow persists until the process restarts or
// a new Start overwrites it.
type Flow struct {
	mu      sync.Mutex
	states  map[string]*flowState
	creator Creator
	logger  *logging.Logger
}

// NewFlow wires a flow over a booking creator. creator may be nil for
// a flow that only collects details without an external system.
func NewFlow(creator Creator, logger *logging.Logger) *Flow {
	if logger == nil {
		logger = logging.Default()
	}
	return &Flow{
		states:  make(map[string]*flowState),
		creator: creator,
		logger:  logger,
	}
}

// Start begins a flow at the address step, the entry point used when
// the customer accepts a quote and scheduling happens on the site.
func (f *Flow) Start(conversationID string, q QuoteDetails) {
	f.start(conversationID, q, StepAskAddress)
}

// StartWithSchedule begins a flow at the date step, collecting the
// full schedule over SMS before address and email.
func (f *Flow) StartWithSchedule(conversationID string, q QuoteDetails) {
	f.start(conversationID, q, StepAskDate)
}

func (f *Flow) start(conversationID string, q QuoteDetails, entry Step) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[conversationID] = &flowState{
		step:      entry,
		quote:     q,
		startedAt: time.Now(),
	}
	f.logger.Info("started booking flow",
		"conversation_id", conversationID,
		"entry_step", string(entry),
	)
}

// Active reports whether a conversation is mid-flow.
func (f *Flow) Active(conversationID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.states[conversationID]
	return ok
}

// Step returns the current step for a conversation, empty when idle.
func (f *Flow) Step(conversationID string) Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.states[conversationID]; ok {
		return st.step
	}
	return ""
}

// Clear drops any flow state for the conversation.
func (f *Flow) Clear(conversationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.states, conversationID)
}

// Handle advances the flow with the customer's message. The second
// return is false when the conversation is not in a flow; otherwise
// the reply to send back is returned. Invalid input re-prompts the
// same step without advancing.
func (f *Flow) Handle(ctx context.Context, conversationID, from, message string) (string, bool) {
	f.mu.Lock()
	st, ok := f.states[conversationID]
	if !ok {
		f.mu.Unlock()
		return "", false
	}

	switch st.step {
	case StepAskDate:
		date := parseDate(message)
		if date == "" {
			f.mu.Unlock()
			return "What date works for you? (like 'Friday' or 'Nov 15')", true
		}
		st.date = date
		st.step = StepAskTime
		f.mu.Unlock()
		return "Got it! What time? We're open 8am-6pm.", true

	case StepAskTime:
		t := parseTime(message)
		if t == "" {
			f.mu.Unlock()
			return "What time works? (like '10am' or '2pm')", true
		}
		st.timeOfDay = t
		st.step = StepAskAddress
		f.mu.Unlock()
		return "Perfect. What's the address?", true

	case StepAskAddress:
		addr := strings.TrimSpace(message)
		if addr == "" {
			f.mu.Unlock()
			return "What's the address?", true
		}
		st.address = addr
		st.step = StepAskEmail
		f.mu.Unlock()
		return "And your email for confirmation?", true

	case StepAskEmail:
		email := strings.TrimSpace(message)
		if !isValidEmail(email) {
			f.mu.Unlock()
			return "That doesn't look like a valid email. Can you send it again?", true
		}
		st.email = email
		st.step = StepConfirm
		summary := confirmationSummary(st)
		f.mu.Unlock()
		return summary, true

	case StepConfirm:
		lower := strings.ToLower(message)
		switch {
		case strings.Contains(lower, "yes") || strings.Contains(lower, "confirm"):
			snapshot := *st
			delete(f.states, conversationID)
			f.mu.Unlock()
			f.createBooking(ctx, snapshot, from)
			// Success-styled either way: a failed external call is an
			// office problem, not something the customer should see.
			return fmt.Sprintf("All set! You're booked for %s at %s.\n\nConfirmation sent to %s!",
				snapshot.date, snapshot.timeOfDay, snapshot.email), true
		case strings.Contains(lower, "no") || strings.Contains(lower, "cancel"):
			delete(f.states, conversationID)
			f.mu.Unlock()
			return "No problem! Text me anytime if you want to book.", true
		default:
			f.mu.Unlock()
			return "Reply 'yes' to confirm or 'no' to cancel.", true
		}
	}

	f.mu.Unlock()
	return "", false
}

func (f *Flow) createBooking(ctx context.Context, st flowState, phone string) {
	if f.creator == nil {
		return
	}
	res, err := f.creator.Create(ctx, CreateRequest{
		PhoneNumber: phone,
		Email:       st.email,
		Bedrooms:    st.quote.Bedrooms,
		Bathrooms:   st.quote.Bathrooms,
		Service:     st.quote.Service,
		Addons:      st.quote.Addons,
		TotalPrice:  st.quote.TotalPrice,
		ServiceDate: st.date,
		ServiceTime: st.timeOfDay,
		Address:     st.address,
	})
	if err != nil {
		f.logger.Error("booking creation failed", "error", err, "phone", phone)
		return
	}
	f.logger.Info("booking created", "booking_id", res.BookingID, "phone", phone)
}

func confirmationSummary(st *flowState) string {
	var b strings.Builder
	b.WriteString("Let me confirm everything:\n\n")
	fmt.Fprintf(&b, "%sbd/%sba %s\n", st.quote.Bedrooms, st.quote.Bathrooms, st.quote.Service)
	if st.date != "" || st.timeOfDay != "" {
		fmt.Fprintf(&b, "%s at %s\n", st.date, st.timeOfDay)
	}
	fmt.Fprintf(&b, "%s\n%s\n$%d total\n\nReply 'yes' to confirm the booking.", st.address, st.email, st.quote.TotalPrice)
	return b.String()
}
