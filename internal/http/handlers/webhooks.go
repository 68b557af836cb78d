// Package handlers exposes the HTTP surface: the OpenPhone webhook and
// a few operational endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/brooklynmaids/sms-concierge/internal/conversation"
	observemetrics "github.com/brooklynmaids/sms-concierge/internal/observability/metrics"
	"github.com/brooklynmaids/sms-concierge/pkg/logging"
)

// phoneField decodes a number that providers send either as a string
// or as a one-element array.
type phoneField string

func (p *phoneField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = phoneField(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		*p = phoneField(list[0])
	}
	return nil
}

// messagePayload is the resolved message object common to both
// envelope shapes.
type messagePayload struct {
	ID             string     `json:"id"`
	Direction      string     `json:"direction"`
	From           phoneField `json:"from"`
	To             phoneField `json:"to"`
	Body           string     `json:"body"`
	Content        string     `json:"content"`
	ConversationID string     `json:"conversationId"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func (m *messagePayload) text() string {
	if m.Body != "" {
		return m.Body
	}
	return m.Content
}

// envelope is the outer webhook wrapper. Two shapes exist: the v3 form
// nests the message under data.object, the legacy form carries it in
// data directly.
type envelope struct {
	Object string          `json:"object"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// decodeMessageEvent resolves the message object from either envelope
// shape. A nil payload with empty eventType means the body was not a
// recognizable message event; such events are acknowledged unhandled.
func decodeMessageEvent(body []byte) (*messagePayload, string) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, ""
	}

	switch {
	case env.Object == "event" && env.Type == "message.received" && len(env.Data) > 0:
		var data struct {
			Object *messagePayload `json:"object"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil || data.Object == nil {
			return nil, env.Type
		}
		return data.Object, env.Type
	case env.Object == "message" && len(env.Data) > 0:
		var msg messagePayload
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return nil, "message"
		}
		return &msg, "message"
	}
	return nil, ""
}

// WebhookHandler receives OpenPhone message events and runs them
// through the conversation pipeline.
type WebhookHandler struct {
	svc     *conversation.Service
	logger  *logging.Logger
	metrics *observemetrics.ConciergeMetrics
}

// NewWebhookHandler wires the webhook endpoint.
func NewWebhookHandler(svc *conversation.Service, logger *logging.Logger, m *observemetrics.ConciergeMetrics) *WebhookHandler {
	if svc == nil {
		panic("handlers: conversation service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{svc: svc, logger: logger, metrics: m}
}

// Incoming handles POST /webhook/incoming-message. Recognized events
// that produce no action are still acknowledged with 200; 500 is
// reserved for internal faults.
func (h *WebhookHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("ignoring malformed webhook payload", "error", err)
		h.metrics.ObserveInbound("unknown", "malformed")
		w.WriteHeader(http.StatusOK)
		return
	}

	msg, eventType := decodeMessageEvent(body)
	if msg == nil {
		h.logger.Info("ignoring non-message event", "event_type", eventType)
		h.metrics.ObserveInbound(eventType, "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}
	defer func() {
		h.metrics.ObserveWebhookLatency(eventType, time.Since(start).Seconds())
	}()

	if msg.Direction != string(conversation.DirectionIncoming) {
		h.logger.Info("skipping outgoing message event", "conversation_id", msg.ConversationID)
		h.metrics.ObserveInbound(eventType, "skipped")
		w.WriteHeader(http.StatusOK)
		return
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err := h.svc.HandleInbound(r.Context(), conversation.InboundMessage{
		ConversationID: msg.ConversationID,
		From:           string(msg.From),
		To:             string(msg.To),
		Body:           msg.text(),
		CreatedAt:      createdAt,
	})
	if err != nil {
		h.logger.Error("inbound handling failed", "error", err, "conversation_id", msg.ConversationID)
		h.metrics.ObserveInbound(eventType, "error")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveInbound(eventType, "handled")
	w.WriteHeader(http.StatusOK)
}
