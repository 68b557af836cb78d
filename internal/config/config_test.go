package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "Brooklyn Maids", cfg.BusinessName)
	assert.Equal(t, "Ellie", cfg.AgentName)
	assert.Equal(t, 8, cfg.BusinessHoursStart)
	assert.Equal(t, 18, cfg.BusinessHoursEnd)
	assert.Equal(t, 10, cfg.MaxResponsesPerHour)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.False(t, cfg.EnableAutoResponse)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BUSINESS_NAME", "Mesa Maids")
	t.Setenv("MAX_RESPONSES_PER_HOUR", "3")
	t.Setenv("ENABLE_AUTO_RESPONSE", "true")
	t.Setenv("LLM_TIMEOUT", "45s")

	cfg := Load()

	assert.Equal(t, "Mesa Maids", cfg.BusinessName)
	assert.Equal(t, 3, cfg.MaxResponsesPerHour)
	assert.True(t, cfg.EnableAutoResponse)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
}

func TestValidate(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		cfg := Load()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENPHONE_API_KEY")
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("valid", func(t *testing.T) {
		t.Setenv("OPENPHONE_API_KEY", "op-key")
		t.Setenv("OPENAI_API_KEY", "sk-key")
		cfg := Load()
		require.NoError(t, cfg.Validate())
	})

	t.Run("inverted business hours", func(t *testing.T) {
		t.Setenv("OPENPHONE_API_KEY", "op-key")
		t.Setenv("OPENAI_API_KEY", "sk-key")
		t.Setenv("BUSINESS_HOURS_START", "19")
		t.Setenv("BUSINESS_HOURS_END", "8")
		cfg := Load()
		require.Error(t, cfg.Validate())
	})
}

func TestIsProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	assert.True(t, Load().IsProduction())

	t.Setenv("ENV", "development")
	assert.False(t, Load().IsProduction())
}
