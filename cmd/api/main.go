package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/brooklynmaids/sms-concierge/internal/api/router"
	"github.com/brooklynmaids/sms-concierge/internal/booking"
	appconfig "github.com/brooklynmaids/sms-concierge/internal/config"
	"github.com/brooklynmaids/sms-concierge/internal/conversation"
	"github.com/brooklynmaids/sms-concierge/internal/http/handlers"
	"github.com/brooklynmaids/sms-concierge/internal/knowledge"
	"github.com/brooklynmaids/sms-concierge/internal/messaging/openphone"
	"github.com/brooklynmaids/sms-concierge/internal/observability/metrics"
	"github.com/brooklynmaids/sms-concierge/internal/quotes"
	"github.com/brooklynmaids/sms-concierge/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting sms-concierge API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"business", cfg.BusinessName,
		"auto_response", cfg.EnableAutoResponse,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	phone, err := openphone.New(openphone.Config{
		BaseURL: cfg.OpenPhoneBaseURL,
		APIKey:  cfg.OpenPhoneAPIKey,
		UserID:  cfg.OpenPhoneUserID,
		Timeout: cfg.SendTimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to build OpenPhone client", "error", err)
		os.Exit(1)
	}

	creator, err := quotes.NewCreator(quotes.CreatorConfig{
		BaseURL: cfg.CleaningSiteURL,
		Timeout: cfg.QuoteTimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to build quote creator", "error", err)
		os.Exit(1)
	}

	bookingClient, err := booking.NewClient(booking.ClientConfig{
		BaseURL: cfg.CleaningSiteURL,
		Timeout: cfg.BookingTimeout,
	})
	if err != nil {
		logger.Error("failed to build booking client", "error", err)
		os.Exit(1)
	}

	// Conversation memory lives in Redis when configured, otherwise in
	// process memory (fine for a single instance, lost on restart).
	var store conversation.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to reach redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		store = conversation.NewRedisStore(rdb)
		logger.Info("using redis conversation store", "addr", cfg.RedisAddr)
	} else {
		store = conversation.NewMemoryStore()
		logger.Info("using in-memory conversation store")
	}

	m := metrics.NewConciergeMetrics(nil)

	limiter := conversation.NewRateLimiter(cfg.MaxResponsesPerHour)
	gate := conversation.NewGate(conversation.GateConfig{
		BusinessHoursStart: cfg.BusinessHoursStart,
		BusinessHoursEnd:   cfg.BusinessHoursEnd,
		EnforceHours:       cfg.IsProduction(),
	}, limiter)

	llm := conversation.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIMaxToken, cfg.LLMTimeout)
	prompts := knowledge.NewPromptBuilder(cfg.AgentName, cfg.BusinessName, "")
	responder := conversation.NewResponder(llm, prompts)

	svc, err := conversation.NewService(conversation.ServiceConfig{
		AutoRespond:       cfg.EnableAutoResponse,
		DefaultFrom:       cfg.TestPhone,
		HistoryFetchLimit: cfg.HistoryFetchLimit,
	}, conversation.ServiceDeps{
		Store:     store,
		Gate:      gate,
		Limiter:   limiter,
		Responder: responder,
		Ledger:    quotes.NewLedger(),
		Creator:   creator,
		Flow:      booking.NewFlow(bookingClient, logger),
		Sender:    phone,
		Fetcher:   phone,
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to build conversation service", "error", err)
		os.Exit(1)
	}

	r := router.New(&router.Config{
		Logger:         logger,
		Webhooks:       handlers.NewWebhookHandler(svc, logger, m),
		Ops:            handlers.NewOpsHandler(cfg, svc, logger),
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
