package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brooklynmaids/sms-concierge/internal/booking"
	"github.com/brooklynmaids/sms-concierge/internal/conversation"
	"github.com/brooklynmaids/sms-concierge/internal/knowledge"
	"github.com/brooklynmaids/sms-concierge/internal/quotes"
	"github.com/brooklynmaids/sms-concierge/pkg/logging"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, conversation.TokenUsage, error) {
	f.calls++
	return f.reply, conversation.TokenUsage{PromptTokens: 10, CompletionTokens: 5}, f.err
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, from, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, content)
	return nil
}

func newTestService(t *testing.T, llm *fakeLLM, sender *fakeSender) *conversation.Service {
	t.Helper()
	limiter := conversation.NewRateLimiter(10)
	svc, err := conversation.NewService(conversation.ServiceConfig{
		AutoRespond: true,
		DefaultFrom: "+15559990000",
	}, conversation.ServiceDeps{
		Store:     conversation.NewMemoryStore(),
		Gate:      conversation.NewGate(conversation.GateConfig{BusinessHoursStart: 8, BusinessHoursEnd: 18}, limiter),
		Limiter:   limiter,
		Responder: conversation.NewResponder(llm, knowledge.NewPromptBuilder("Sarah", "Brooklyn Maids", "https://brooklynmaids.com/booking")),
		Ledger:    quotes.NewLedger(),
		Flow:      booking.NewFlow(nil, logging.Default()),
		Sender:    sender,
	})
	require.NoError(t, err)
	return svc
}

const v3Envelope = `{
	"object": "event",
	"type": "message.received",
	"data": {
		"object": {
			"id": "msg_1",
			"direction": "incoming",
			"from": "+15550001111",
			"to": ["+15559990000"],
			"body": "How much for a 2 bed 1 bath?",
			"conversationId": "conv-77"
		}
	}
}`

const legacyEnvelope = `{
	"object": "message",
	"data": {
		"id": "msg_2",
		"direction": "incoming",
		"from": "+15550001111",
		"to": "+15559990000",
		"content": "Do you clean on weekends?",
		"conversationId": "conv-78"
	}
}`

func TestWebhookV3Envelope(t *testing.T) {
	llm := &fakeLLM{reply: "Sure, a 2 bed 1 bath standard clean is $200 total."}
	sender := &fakeSender{}
	h := NewWebhookHandler(newTestService(t, llm, sender), logging.Default(), nil)

	rec := httptest.NewRecorder()
	h.Incoming(rec, httptest.NewRequest(http.MethodPost, "/webhook/incoming-message", strings.NewReader(v3Envelope)))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "$200")
}

func TestWebhookLegacyEnvelope(t *testing.T) {
	llm := &fakeLLM{reply: "Yes! We clean seven days a week. Want a quote?"}
	sender := &fakeSender{}
	h := NewWebhookHandler(newTestService(t, llm, sender), logging.Default(), nil)

	rec := httptest.NewRecorder()
	h.Incoming(rec, httptest.NewRequest(http.MethodPost, "/webhook/incoming-message", strings.NewReader(legacyEnvelope)))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, 1, llm.calls)
}

func TestWebhookSkipsOutgoingMessages(t *testing.T) {
	body := strings.Replace(v3Envelope, `"incoming"`, `"outgoing"`, 1)
	llm := &fakeLLM{reply: "should not be called"}
	sender := &fakeSender{}
	h := NewWebhookHandler(newTestService(t, llm, sender), logging.Default(), nil)

	rec := httptest.NewRecorder()
	h.Incoming(rec, httptest.NewRequest(http.MethodPost, "/webhook/incoming-message", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sender.sent)
	assert.Zero(t, llm.calls)
}

func TestWebhookIgnoresNonMessageEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"call event", `{"object":"event","type":"call.completed","data":{"object":{"id":"c1"}}}`},
		{"unknown object", `{"object":"contact","data":{"id":"ct1"}}`},
		{"empty object", `{}`},
	}
	llm := &fakeLLM{reply: "should not be called"}
	sender := &fakeSender{}
	h := NewWebhookHandler(newTestService(t, llm, sender), logging.Default(), nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Incoming(rec, httptest.NewRequest(http.MethodPost, "/webhook/incoming-message", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
	assert.Empty(t, sender.sent)
}

func TestWebhookMalformedBodyAcknowledged(t *testing.T) {
	sender := &fakeSender{}
	h := NewWebhookHandler(newTestService(t, &fakeLLM{}, sender), logging.Default(), nil)

	rec := httptest.NewRecorder()
	h.Incoming(rec, httptest.NewRequest(http.MethodPost, "/webhook/incoming-message", strings.NewReader("not json at all")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sender.sent)
}

func TestWebhookEscalationNoReply(t *testing.T) {
	body := strings.Replace(v3Envelope, "How much for a 2 bed 1 bath?", "I want a refund right now", 1)
	llm := &fakeLLM{reply: "should not be called"}
	sender := &fakeSender{}
	h := NewWebhookHandler(newTestService(t, llm, sender), logging.Default(), nil)

	rec := httptest.NewRecorder()
	h.Incoming(rec, httptest.NewRequest(http.MethodPost, "/webhook/incoming-message", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sender.sent)
	assert.Zero(t, llm.calls)
}

func TestPhoneFieldDecoding(t *testing.T) {
	var m messagePayload
	require.NoError(t, json.Unmarshal([]byte(`{"from":"+1555","to":["+1666","+1777"]}`), &m))
	assert.Equal(t, "+1555", string(m.From))
	assert.Equal(t, "+1666", string(m.To))
}
