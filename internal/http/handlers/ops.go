package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/brooklynmaids/sms-concierge/internal/config"
	"github.com/brooklynmaids/sms-concierge/internal/conversation"
	"github.com/brooklynmaids/sms-concierge/pkg/logging"
)

// OpsHandler serves the health check and the operator test endpoints.
type OpsHandler struct {
	cfg    *config.Config
	svc    *conversation.Service
	logger *logging.Logger
}

// NewOpsHandler wires the operational endpoints.
func NewOpsHandler(cfg *config.Config, svc *conversation.Service, logger *logging.Logger) *OpsHandler {
	if cfg == nil {
		panic("handlers: config cannot be nil")
	}
	if svc == nil {
		panic("handlers: conversation service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OpsHandler{cfg: cfg, svc: svc, logger: logger}
}

// Health handles GET /health.
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "sms-concierge",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Test handles GET /test. It echoes non-secret configuration so an
// operator can confirm the deployment sees its environment.
func (h *OpsHandler) Test(w http.ResponseWriter, r *http.Request) {
	testPhone := h.cfg.TestPhone
	if testPhone == "" {
		testPhone = "Not set"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "SMS concierge is running",
		"config": map[string]any{
			"hasOpenPhoneKey":     h.cfg.OpenPhoneAPIKey != "",
			"hasOpenAIKey":        h.cfg.OpenAIAPIKey != "",
			"autoResponseEnabled": h.cfg.EnableAutoResponse,
			"businessName":        h.cfg.BusinessName,
			"testPhone":           testPhone,
		},
	})
}

type testAIRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	From           string `json:"from"`
}

// TestAIResponse handles POST /test-ai-response. It runs the full
// pipeline in dry-run mode: the gate decides, the model replies, the
// validator checks, and nothing is sent or recorded.
func (h *OpsHandler) TestAIResponse(w http.ResponseWriter, r *http.Request) {
	var req testAIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "message is required",
		})
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = "test-conversation"
	}
	from := req.From
	if from == "" {
		from = h.cfg.TestPhone
	}

	res, err := h.svc.DryRun(r.Context(), conversation.InboundMessage{
		ConversationID: conversationID,
		From:           from,
		Body:           req.Message,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		h.logger.Error("dry run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "response generation failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"decision":   res.Decision,
		"aiResponse": res.Reply,
		"intent":     res.Intent,
		"validation": map[string]any{
			"valid":  res.Valid,
			"reason": res.ValidationReason,
		},
		"usage":     res.Usage,
		"wouldSend": res.Decision.Allow && res.Reply != "" && res.Valid,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
