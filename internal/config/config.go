package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// OpenPhone messaging credentials
	OpenPhoneAPIKey  string
	OpenPhoneBaseURL string
	OpenPhoneUserID  string

	// LLM provider
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIMaxToken int

	// Business identity baked into the agent prompt
	BusinessName   string
	BusinessDomain string
	AgentName      string
	TestPhone      string

	// Auto-response gating
	EnableAutoResponse  bool
	BusinessHoursStart  int
	BusinessHoursEnd    int
	MaxResponsesPerHour int
	HistoryFetchLimit   int

	// Cleaning-site API (quote + booking creation)
	CleaningSiteURL string

	// Optional Redis backend for conversation memory
	RedisAddr     string
	RedisPassword string

	SendTimeout    time.Duration
	HistoryTimeout time.Duration
	QuoteTimeout   time.Duration
	BookingTimeout time.Duration
	LLMTimeout     time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OpenPhoneAPIKey:  getEnv("OPENPHONE_API_KEY", ""),
		OpenPhoneBaseURL: getEnv("OPENPHONE_BASE_URL", "https://api.openphone.com/v1"),
		OpenPhoneUserID:  getEnv("OPENPHONE_USER_ID", ""),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIMaxToken: getEnvAsInt("OPENAI_MAX_TOKENS", 1024),

		BusinessName:   getEnv("BUSINESS_NAME", "Brooklyn Maids"),
		BusinessDomain: getEnv("BUSINESS_DOMAIN", "brooklynmaids.com"),
		AgentName:      getEnv("AGENT_NAME", "Ellie"),
		TestPhone:      getEnv("TEST_PHONE_NUMBER", ""),

		EnableAutoResponse:  getEnvAsBool("ENABLE_AUTO_RESPONSE", false),
		BusinessHoursStart:  getEnvAsInt("BUSINESS_HOURS_START", 8),
		BusinessHoursEnd:    getEnvAsInt("BUSINESS_HOURS_END", 18),
		MaxResponsesPerHour: getEnvAsInt("MAX_RESPONSES_PER_HOUR", 10),
		HistoryFetchLimit:   getEnvAsInt("HISTORY_FETCH_LIMIT", 20),

		CleaningSiteURL: getEnv("CLEANING_SITE_URL", "https://brooklynmaids.com"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		SendTimeout:    getEnvAsDuration("SEND_TIMEOUT", 10*time.Second),
		HistoryTimeout: getEnvAsDuration("HISTORY_TIMEOUT", 10*time.Second),
		QuoteTimeout:   getEnvAsDuration("QUOTE_TIMEOUT", 10*time.Second),
		BookingTimeout: getEnvAsDuration("BOOKING_TIMEOUT", 15*time.Second),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
	}
}

// Validate reports missing required credentials. The process must not serve
// traffic when this returns an error.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.OpenPhoneAPIKey) == "" {
		missing = append(missing, "OPENPHONE_API_KEY")
	}
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required credentials: %s", strings.Join(missing, ", "))
	}
	if c.BusinessHoursStart < 0 || c.BusinessHoursEnd > 24 || c.BusinessHoursStart >= c.BusinessHoursEnd {
		return errors.New("config: business hours window is invalid")
	}
	return nil
}

// IsProduction reports whether the business-hours gate should be enforced.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
