package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(cfg GateConfig, limit int) (*Gate, *RateLimiter) {
	limiter := NewRateLimiter(limit)
	return NewGate(cfg, limiter), limiter
}

func TestGateEscalationKeywords(t *testing.T) {
	g, _ := newTestGate(GateConfig{}, 10)
	ctx := context.Background()

	tests := []struct {
		name    string
		body    string
		keyword string
	}{
		{"refund", "This is great but I want a refund", "refund"},
		{"complaint", "I have a complaint about the last clean", "complaint"},
		{"lawyer", "you'll hear from my LAWYER", "lawyer"},
		{"money back", "give me my money back", "money back"},
		{"cancel booking", "please cancel my booking", "cancel my booking"},
		{"broken", "the vacuum left my lamp broken", "broke"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Decide(ctx, InboundMessage{ConversationID: "c", From: "+1555", Body: tt.body}, nil)
			assert.False(t, d.Allow)
			assert.Contains(t, d.Reason, tt.keyword)
		})
	}
}

// Keyword check precedes every other check: "refund" denies with that
// reason even when the rate limit is also exhausted.
func TestGateKeywordPrecedesRateLimit(t *testing.T) {
	g, limiter := newTestGate(GateConfig{}, 1)
	limiter.Record("+1555")

	d := g.Decide(context.Background(), InboundMessage{From: "+1555", Body: "refund please"}, nil)
	assert.False(t, d.Allow)
	assert.Contains(t, d.Reason, "refund")
}

func TestGateConversationLengthCeiling(t *testing.T) {
	g, _ := newTestGate(GateConfig{}, 10)

	history := make([]StoredMessage, 0, 12)
	for i := 0; i < 6; i++ {
		history = append(history,
			StoredMessage{Direction: DirectionIncoming, Body: "q"},
			StoredMessage{Direction: DirectionOutgoing, Body: "a"},
		)
	}

	d := g.Decide(context.Background(), InboundMessage{From: "+1555", Body: "hi"}, history)
	assert.False(t, d.Allow)
	assert.Contains(t, d.Reason, "too many messages")

	// Outgoing messages don't count toward the ceiling.
	d = g.Decide(context.Background(), InboundMessage{From: "+1555", Body: "hi"}, history[:10])
	assert.True(t, d.Allow)
}

func TestGateRateLimit(t *testing.T) {
	g, limiter := newTestGate(GateConfig{}, 2)
	ctx := context.Background()
	msg := InboundMessage{From: "+1555", Body: "hi"}

	require.True(t, g.Decide(ctx, msg, nil).Allow)
	limiter.Record("+1555")
	require.True(t, g.Decide(ctx, msg, nil).Allow)
	limiter.Record("+1555")

	d := g.Decide(ctx, msg, nil)
	assert.False(t, d.Allow)
	assert.Equal(t, "rate limit exceeded", d.Reason)

	// Other senders are unaffected.
	assert.True(t, g.Decide(ctx, InboundMessage{From: "+1666", Body: "hi"}, nil).Allow)
}

func TestGateBusinessHours(t *testing.T) {
	cfg := GateConfig{BusinessHoursStart: 8, BusinessHoursEnd: 18, EnforceHours: true}

	tests := []struct {
		name  string
		now   time.Time
		allow bool
	}{
		{"weekday mid-day", time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC), true}, // Monday
		{"weekday before open", time.Date(2026, 8, 24, 7, 59, 0, 0, time.UTC), false},
		{"weekday after close", time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC), false},
		{"sunday closed", time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGate(cfg, 10)
			g.nowFunc = func() time.Time { return tt.now }
			d := g.Decide(context.Background(), InboundMessage{From: "+1555", Body: "hi"}, nil)
			assert.Equal(t, tt.allow, d.Allow, "reason: %s", d.Reason)
		})
	}
}

func TestGateHoursNotEnforcedOutsideProduction(t *testing.T) {
	g, _ := newTestGate(GateConfig{BusinessHoursStart: 8, BusinessHoursEnd: 18}, 10)
	g.nowFunc = func() time.Time { return time.Date(2026, 8, 23, 3, 0, 0, 0, time.UTC) }

	d := g.Decide(context.Background(), InboundMessage{From: "+1555", Body: "hi"}, nil)
	assert.True(t, d.Allow)
	assert.Equal(t, "all checks passed", d.Reason)
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	r := NewRateLimiter(2)
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	r.nowFunc = func() time.Time { return now }

	r.Record("+1555")
	r.Record("+1555")
	assert.False(t, r.Allow("+1555"))

	// An hour later the window has slid past both stamps.
	now = now.Add(61 * time.Minute)
	assert.True(t, r.Allow("+1555"))
}

func TestRateLimiterAllowDoesNotConsume(t *testing.T) {
	r := NewRateLimiter(1)
	assert.True(t, r.Allow("+1555"))
	assert.True(t, r.Allow("+1555"), "Allow is read-only")
	r.Record("+1555")
	assert.False(t, r.Allow("+1555"))
}
