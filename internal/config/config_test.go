package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvAsIntOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"parses duration", "15s", 15 * time.Second},
		{"uses default for empty", "", time.Minute},
		{"uses default for garbage", "soon", time.Minute},
		{"uses default for negative", "-5s", time.Minute},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tc.envValue)
			assert.Equal(t, tc.expected, getEnvAsDurationOrDefault("TEST_DURATION", time.Minute))
		})
	}
}

func TestLoad_MissingKeyDoesNotPanic(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_MODEL", "")

	cfg := Load()
	assert.Empty(t, cfg.GoogleAPIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 2048, cfg.GeminiMaxOutputTokens)
}

func TestLoad_ReadsOverrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("RELAY_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "12")

	cfg := Load()
	assert.Equal(t, "secret", cfg.GoogleAPIKey)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.RelayTimeout)
	assert.Equal(t, 12, cfg.RateLimitPerMinute)
}

func TestLoadClient_Defaults(t *testing.T) {
	t.Setenv("ARGOCHAT_STORE", "")
	t.Setenv("ARGOCHAT_NAMESPACE", "")
	t.Setenv("ARGOCHAT_RELAY_URL", "")

	cfg := LoadClient()
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, "promptbox", cfg.Namespace)
	assert.Equal(t, "http://localhost:3000", cfg.RelayURL)
	assert.NotEmpty(t, cfg.StorePath)
}
