package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "http://prometheus:9090", cfg.Prometheus.URL)
	assert.Equal(t, "http://loki:3100", cfg.Loki.URL)
	assert.Equal(t, 15*time.Minute, cfg.Analysis.TimeWindow)
	assert.Equal(t, 500, cfg.Analysis.MaxLogLines)
	assert.Equal(t, 100, cfg.Analysis.MaxMetricsPoints)
	assert.Equal(t, 180*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, LLMProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "deepseek-r1-distil-qwen-32b_raziqt", cfg.LLM.Model)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.False(t, cfg.LLM.Enabled())
	assert.False(t, cfg.Auth.Enabled())
	assert.False(t, cfg.Postgres.Enabled())
	assert.Empty(t, cfg.Notify.SlackWebhookURLs)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROMETHEUS_URL", "http://prom.local:9090/")
	t.Setenv("TIME_WINDOW_MINUTES", "30")
	t.Setenv("LLM_TIMEOUT", "45")
	t.Setenv("LLM_RETRY_INITIAL", "250ms")
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.test/a")
	t.Setenv("SLACK_WEBHOOK_URLS", "https://hooks.slack.test/a, https://hooks.slack.test/b")
	t.Setenv("DATABASE_URL", "postgres://u@localhost/db")

	cfg := Load()

	assert.Equal(t, "http://prom.local:9090", cfg.Prometheus.URL)
	assert.Equal(t, 30*time.Minute, cfg.Analysis.TimeWindow)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.LLM.RetryInitial)
	assert.Equal(t, LLMProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.True(t, cfg.LLM.Enabled())
	assert.True(t, cfg.Postgres.Enabled())
	assert.Equal(t, []string{"https://hooks.slack.test/a", "https://hooks.slack.test/b"}, cfg.Notify.SlackWebhookURLs)
}

func TestLoadLegacyHuaweiKeys(t *testing.T) {
	t.Setenv("HUAWEI_API_KEY", "legacy")
	t.Setenv("HUAWEI_MODEL_NAME", "distill-llama-8b_46e6iu")

	cfg := Load()

	assert.Equal(t, "legacy", cfg.LLM.APIKey)
	assert.Equal(t, "distill-llama-8b_46e6iu", cfg.LLM.Model)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_LOG_LINES", "lots")
	t.Setenv("LLM_TEMPERATURE", "warm")
	t.Setenv("LLM_PROVIDER", "mystery")
	t.Setenv("LLM_MAX_RETRIES", "0")

	cfg := Load()

	assert.Equal(t, 500, cfg.Analysis.MaxLogLines)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, LLMProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 1, cfg.LLM.MaxRetries)
	require.Len(t, cfg.Warnings, 4)
}

func TestLoadMaxPromptCharsFloor(t *testing.T) {
	t.Setenv("LLM_MAX_PROMPT_CHARS", "300")
	cfg := Load()
	assert.Equal(t, MinPromptChars, cfg.LLM.MaxPromptChars)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "LLM_MAX_PROMPT_CHARS")

	t.Setenv("LLM_MAX_PROMPT_CHARS", "0")
	cfg = Load()
	assert.Equal(t, 0, cfg.LLM.MaxPromptChars)
	assert.Empty(t, cfg.Warnings)
}
