package conversation

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brooklynmaids/sms-concierge/internal/booking"
	"github.com/brooklynmaids/sms-concierge/internal/intent"
	"github.com/brooklynmaids/sms-concierge/internal/messaging/openphone"
	"github.com/brooklynmaids/sms-concierge/internal/observability/metrics"
	"github.com/brooklynmaids/sms-concierge/internal/pricing"
	"github.com/brooklynmaids/sms-concierge/internal/quotes"
	"github.com/brooklynmaids/sms-concierge/pkg/logging"
)

// Sender delivers one outbound SMS. Implemented by openphone.Client.
type Sender interface {
	Send(ctx context.Context, to, from, content string) error
}

// HistoryFetcher pages prior messages from the telephony provider,
// used to warm an empty local store. Implemented by openphone.Client.
type HistoryFetcher interface {
	ListMessages(ctx context.Context, conversationID string, limit int) []openphone.Message
}

// QuoteCreator registers quotes with the cleaning site. Implemented by
// quotes.Creator.
type QuoteCreator interface {
	Create(ctx context.Context, q quotes.Quote) (quotes.CreateResult, error)
}

var priceRE = regexp.MustCompile(`\$(\d+)`)

// bookingTriggers start the guided booking flow when a quote exists.
var bookingTriggers = []string{
	"book it", "book now", "book me", "i want to book", "let's book", "lets book",
}

// linkTriggers resend the booking link for the latest quote.
var linkTriggers = []string{
	"send the link", "send link", "send me the link",
}

// ServiceConfig carries the service's runtime switches.
type ServiceConfig struct {
	// AutoRespond gates the whole pipeline; when false every inbound
	// message is left for a human.
	AutoRespond bool
	// DefaultFrom is the sending number used when the webhook did not
	// carry one.
	DefaultFrom string
	// HistoryFetchLimit bounds the provider history page used to warm
	// an empty local store.
	HistoryFetchLimit int
}

// Service runs the full inbound-message pipeline: memory, escalation
// gate, generation, validation, send, and quote/booking bookkeeping.
// Handling is serialized per conversation id.
type Service struct {
	cfg       ServiceConfig
	store     Store
	gate      *Gate
	limiter   *RateLimiter
	responder *Responder
	ledger    *quotes.Ledger
	creator   QuoteCreator
	flow      *booking.Flow
	sender    Sender
	fetcher   HistoryFetcher
	metrics   *metrics.ConciergeMetrics
	logger    *logging.Logger
	tracer    trace.Tracer
	locks     *keyedMutex
}

// ServiceDeps bundles the collaborators for NewService. Creator and
// Fetcher are optional; everything else is required.
type ServiceDeps struct {
	Store     Store
	Gate      *Gate
	Limiter   *RateLimiter
	Responder *Responder
	Ledger    *quotes.Ledger
	Creator   QuoteCreator
	Flow      *booking.Flow
	Sender    Sender
	Fetcher   HistoryFetcher
	Metrics   *metrics.ConciergeMetrics
	Logger    *logging.Logger
}

// NewService wires the pipeline.
func NewService(cfg ServiceConfig, deps ServiceDeps) (*Service, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("conversation: store is required")
	case deps.Gate == nil:
		return nil, errors.New("conversation: gate is required")
	case deps.Limiter == nil:
		return nil, errors.New("conversation: rate limiter is required")
	case deps.Responder == nil:
		return nil, errors.New("conversation: responder is required")
	case deps.Ledger == nil:
		return nil, errors.New("conversation: quote ledger is required")
	case deps.Flow == nil:
		return nil, errors.New("conversation: booking flow is required")
	case deps.Sender == nil:
		return nil, errors.New("conversation: sender is required")
	}
	if cfg.HistoryFetchLimit <= 0 {
		cfg.HistoryFetchLimit = 20
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		cfg:       cfg,
		store:     deps.Store,
		gate:      deps.Gate,
		limiter:   deps.Limiter,
		responder: deps.Responder,
		ledger:    deps.Ledger,
		creator:   deps.Creator,
		flow:      deps.Flow,
		sender:    deps.Sender,
		fetcher:   deps.Fetcher,
		metrics:   deps.Metrics,
		logger:    logger,
		tracer:    otel.Tracer("concierge.internal.conversation.service"),
		locks:     newKeyedMutex(),
	}, nil
}

// HandleInbound processes one customer message end to end. A nil
// return means the event was handled, including every "leave it for a
// human" path; errors are reserved for internal faults.
func (s *Service) HandleInbound(ctx context.Context, msg InboundMessage) error {
	ctx, span := s.tracer.Start(ctx, "conversation.handle_inbound",
		trace.WithAttributes(attribute.String("conversation.id", msg.ConversationID)))
	defer span.End()

	unlock := s.locks.lock(msg.ConversationID)
	defer unlock()

	log := s.logger.With("conversation_id", msg.ConversationID, "from", msg.From)

	if !s.cfg.AutoRespond {
		log.Info("auto-response disabled, leaving for human")
		return nil
	}

	prior := s.loadHistory(ctx, msg.ConversationID)
	if err := s.store.Append(ctx, msg.ConversationID, msg.Stored()); err != nil {
		log.Error("failed to append incoming message", "error", err)
	}

	// Mid-flow messages belong to the booking flow, not the model.
	if reply, handled := s.flow.Handle(ctx, msg.ConversationID, msg.From, msg.Body); handled {
		s.deliver(ctx, msg, reply, log)
		return nil
	}

	decision := s.gate.Decide(ctx, msg, append(prior, msg.Stored()))
	if !decision.Allow {
		log.Info("leaving message for human", "reason", decision.Reason)
		s.metrics.ObserveEscalation(decision.Reason)
		return nil
	}

	if reply, ok := s.maybeStartBooking(msg); ok {
		s.deliver(ctx, msg, reply, log)
		return nil
	}

	in := intent.Extract(msg.Body, turnsFrom(prior))
	quoteSent := WasQuoteSent(prior)

	start := time.Now()
	gen, err := s.responder.Generate(ctx, msg, prior, in, quoteSent)
	s.metrics.ObserveLLMLatency(time.Since(start).Seconds())
	if err != nil {
		log.Error("generation failed, leaving for human", "error", err)
		s.metrics.ObserveReply("generation_failed")
		return nil
	}

	if ok, reason := Validate(gen.Text); !ok {
		log.Warn("generated reply failed validation, leaving for human", "reason", reason)
		s.metrics.ObserveReply("validation_failed")
		return nil
	}

	if !s.deliver(ctx, msg, gen.Text, log) {
		return nil
	}

	if !quoteSent && in.HasPropertyDetails {
		s.recordQuote(ctx, msg, in, gen.Text, log)
	}
	return nil
}

// deliver sends a reply and, on success, records the rate stamp and
// appends the outgoing turn. Returns whether the send succeeded.
func (s *Service) deliver(ctx context.Context, msg InboundMessage, text string, log *logging.Logger) bool {
	from := msg.To
	if from == "" {
		from = s.cfg.DefaultFrom
	}
	if err := s.sender.Send(ctx, msg.From, from, text); err != nil {
		log.Error("failed to send reply", "error", err)
		s.metrics.ObserveReply("send_failed")
		return false
	}

	s.limiter.Record(msg.From)
	if err := s.store.Append(ctx, msg.ConversationID, StoredMessage{
		Direction: DirectionOutgoing,
		From:      from,
		To:        msg.From,
		Body:      text,
		CreatedAt: time.Now(),
	}); err != nil {
		log.Error("failed to append outgoing message", "error", err)
	}
	s.metrics.ObserveReply("sent")
	return true
}

// maybeStartBooking starts the guided flow when the customer asks to
// book and a quote is on file. The reply is the flow's first question.
func (s *Service) maybeStartBooking(msg InboundMessage) (string, bool) {
	q, ok := s.ledger.Latest(msg.ConversationID)
	if !ok {
		return "", false
	}
	lower := strings.ToLower(msg.Body)
	for _, t := range linkTriggers {
		if strings.Contains(lower, t) && q.BookingURL != "" {
			return "Here you go: " + q.BookingURL, true
		}
	}
	triggered := strings.TrimSpace(lower) == "book"
	if !triggered {
		for _, t := range bookingTriggers {
			if strings.Contains(lower, t) {
				triggered = true
				break
			}
		}
	}
	if !triggered {
		return "", false
	}

	s.flow.StartWithSchedule(msg.ConversationID, booking.QuoteDetails{
		Bedrooms:   q.Bedrooms,
		Bathrooms:  q.Bathrooms,
		Service:    q.Service,
		Addons:     q.Addons,
		TotalPrice: q.TotalPrice,
	})
	return "Let's get you booked! What date works for you? (like 'Friday' or 'Nov 15')", true
}

// recordQuote writes a ledger entry for a priced reply and best-effort
// registers it with the cleaning site. Called only when no quote had
// been sent before this turn and the property details are resolved.
func (s *Service) recordQuote(ctx context.Context, msg InboundMessage, in intent.Intent, reply string, log *logging.Logger) {
	m := priceRE.FindStringSubmatch(reply)
	if m == nil {
		return
	}

	total, err := pricing.Price(in)
	if err != nil {
		// Off-table property: trust the figure the model quoted.
		total, _ = strconv.Atoi(m[1])
	}

	q := quotes.Quote{
		ConversationID: msg.ConversationID,
		PhoneNumber:    msg.From,
		Bedrooms:       in.Bedrooms,
		Bathrooms:      in.Bathrooms,
		Service:        in.Service,
		Addons:         in.Addons,
		TotalPrice:     total,
		QuoteCode:      uuid.NewString(),
		CreatedAt:      time.Now(),
	}

	if s.creator != nil {
		if res, err := s.creator.Create(ctx, q); err != nil {
			log.Error("external quote creation failed", "error", err)
		} else {
			if res.QuoteCode != "" {
				q.QuoteCode = res.QuoteCode
			}
			q.BookingURL = res.BookingURL
		}
	}

	s.ledger.Record(q)
	s.metrics.ObserveQuoteRecorded()
	log.Info("quote recorded",
		"quote_code", q.QuoteCode,
		"bedrooms", q.Bedrooms,
		"bathrooms", q.Bathrooms,
		"total", q.TotalPrice,
	)
}

// loadHistory returns prior turns for the conversation, warming an
// empty local store from the provider when a fetcher is configured.
func (s *Service) loadHistory(ctx context.Context, conversationID string) []StoredMessage {
	history, err := s.store.History(ctx, conversationID)
	if err != nil {
		s.logger.Error("failed to load history", "error", err, "conversation_id", conversationID)
		history = nil
	}
	if len(history) > 0 || s.fetcher == nil {
		return history
	}

	for _, m := range s.fetcher.ListMessages(ctx, conversationID, s.cfg.HistoryFetchLimit) {
		sm := StoredMessage{
			Direction: Direction(m.Direction),
			From:      m.From,
			Body:      m.Text(),
			CreatedAt: m.CreatedAt,
		}
		if len(m.To) > 0 {
			sm.To = m.To[0]
		}
		history = append(history, sm)
		if err := s.store.Append(ctx, conversationID, sm); err != nil {
			s.logger.Error("failed to seed history", "error", err, "conversation_id", conversationID)
		}
	}
	return history
}

func turnsFrom(history []StoredMessage) []intent.Turn {
	turns := make([]intent.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, intent.Turn{
			Outgoing: m.Direction == DirectionOutgoing,
			Body:     m.Body,
		})
	}
	return turns
}
