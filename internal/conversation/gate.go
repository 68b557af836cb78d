package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// escalationKeywords flag messages a human should handle. Matching is
// case-insensitive substring over the incoming text.
var escalationKeywords = []string{
	"complaint", "complain", "terrible", "awful", "horrible", "worst",
	"sue", "lawsuit", "lawyer", "attorney",
	"refund", "money back", "charge",
	"cancel my booking", "reschedule my booking",
	"angry", "upset", "disappointed", "unsatisfied",
	"damaged", "broke", "broken", "stole", "stolen", "missing",
}

// maxIncomingMessages is the conversation-length ceiling; past it the
// thread has gone on long enough that a human should take over.
const maxIncomingMessages = 5

// Decision is the gate's verdict for one inbound message.
type Decision struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason"`
}

// GateConfig carries the tunable parts of the escalation gate.
type GateConfig struct {
	BusinessHoursStart int
	BusinessHoursEnd   int
	// EnforceHours restricts replies to business hours. Only set in
	// production so local testing works around the clock.
	EnforceHours bool
}

// Gate decides whether the bot may answer an inbound message or the
// conversation must be left for a human. It never mutates state: the
// rate limiter is consulted read-only, and recording happens after a
// successful send.
type Gate struct {
	cfg     GateConfig
	limiter *RateLimiter
	tracer  trace.Tracer
	nowFunc func() time.Time
}

// NewGate builds a gate over a shared rate limiter.
func NewGate(cfg GateConfig, limiter *RateLimiter) *Gate {
	return &Gate{
		cfg:     cfg,
		limiter: limiter,
		tracer:  otel.Tracer("concierge.internal.conversation.gate"),
		nowFunc: time.Now,
	}
}

// Decide evaluates the checks in strict order: escalation keywords,
// conversation length, rate limit, business hours. The first failing
// check wins and its reason is returned.
func (g *Gate) Decide(ctx context.Context, msg InboundMessage, history []StoredMessage) Decision {
	_, span := g.tracer.Start(ctx, "conversation.gate.decide",
		trace.WithAttributes(attribute.String("conversation.id", msg.ConversationID)))
	defer span.End()

	d := g.decide(msg, history)
	span.SetAttributes(
		attribute.Bool("gate.allow", d.Allow),
		attribute.String("gate.reason", d.Reason),
	)
	return d
}

func (g *Gate) decide(msg InboundMessage, history []StoredMessage) Decision {
	lower := strings.ToLower(msg.Body)
	for _, kw := range escalationKeywords {
		if strings.Contains(lower, kw) {
			return Decision{Reason: fmt.Sprintf("contains escalation keyword: %s", kw)}
		}
	}

	incoming := 0
	for _, m := range history {
		if m.Direction == DirectionIncoming {
			incoming++
		}
	}
	if incoming > maxIncomingMessages {
		return Decision{Reason: fmt.Sprintf("too many messages (>%d)", maxIncomingMessages)}
	}

	if !g.limiter.Allow(msg.From) {
		return Decision{Reason: "rate limit exceeded"}
	}

	if g.cfg.EnforceHours && !g.withinBusinessHours() {
		return Decision{Reason: "outside business hours"}
	}

	return Decision{Allow: true, Reason: "all checks passed"}
}

// withinBusinessHours is closed Sundays and outside the configured
// hour bounds.
func (g *Gate) withinBusinessHours() bool {
	now := g.nowFunc()
	if now.Weekday() == time.Sunday {
		return false
	}
	hour := now.Hour()
	return hour >= g.cfg.BusinessHoursStart && hour < g.cfg.BusinessHoursEnd
}
