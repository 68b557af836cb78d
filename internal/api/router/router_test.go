package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brooklynmaids/sms-concierge/internal/booking"
	"github.com/brooklynmaids/sms-concierge/internal/config"
	"github.com/brooklynmaids/sms-concierge/internal/conversation"
	"github.com/brooklynmaids/sms-concierge/internal/http/handlers"
	"github.com/brooklynmaids/sms-concierge/internal/knowledge"
	"github.com/brooklynmaids/sms-concierge/internal/quotes"
	"github.com/brooklynmaids/sms-concierge/pkg/logging"
)

type staticLLM struct{ reply string }

func (s staticLLM) Complete(ctx context.Context, system, user string) (string, conversation.TokenUsage, error) {
	return s.reply, conversation.TokenUsage{}, nil
}

type dropSender struct{}

func (dropSender) Send(ctx context.Context, to, from, content string) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	limiter := conversation.NewRateLimiter(10)
	svc, err := conversation.NewService(conversation.ServiceConfig{AutoRespond: true}, conversation.ServiceDeps{
		Store:     conversation.NewMemoryStore(),
		Gate:      conversation.NewGate(conversation.GateConfig{BusinessHoursStart: 8, BusinessHoursEnd: 18}, limiter),
		Limiter:   limiter,
		Responder: conversation.NewResponder(staticLLM{reply: "Happy to help! What size is your home?"}, knowledge.NewPromptBuilder("", "", "")),
		Ledger:    quotes.NewLedger(),
		Flow:      booking.NewFlow(nil, logger),
		Sender:    dropSender{},
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	cfg := &config.Config{BusinessName: "Brooklyn Maids"}
	return New(&Config{
		Logger:         logger,
		Webhooks:       handlers.NewWebhookHandler(svc, logger, nil),
		Ops:            handlers.NewOpsHandler(cfg, svc, logger),
		MetricsHandler: promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterWebhookRoute(t *testing.T) {
	router := newTestRouter(t)

	body := `{"object":"message","data":{"direction":"incoming","from":"+15550001111","to":"+15559990000","body":"hi","conversationId":"c1"}}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook/incoming-message", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterTestEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /test: expected %d, got %d", http.StatusOK, rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/test-ai-response", strings.NewReader(`{"message":"do you clean ovens?"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("POST /test-ai-response: expected %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
