package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GoogleAPIKey          string
	GeminiModel           string
	GeminiMaxOutputTokens int
	GeminiBaseURL         string

	// Relay
	RelayTimeout       time.Duration
	RateLimitPerMinute int

	// Frontend
	FrontendURL string
}

// ClientConfig configures the argochat terminal client.
type ClientConfig struct {
	RelayURL  string
	Store     string
	StorePath string
	RedisURL  string
	Namespace string
}

// Load reads server configuration. The API key is optional here: the relay
// reports a missing key on every request instead of refusing to start.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Port:                  getEnvOrDefault("PORT", "3000"),
		Env:                   getEnvOrDefault("ENV", "development"),
		GoogleAPIKey:          os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiMaxOutputTokens: getEnvAsIntOrDefault("GEMINI_MAX_OUTPUT_TOKENS", 2048),
		GeminiBaseURL:         getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		RelayTimeout:          getEnvAsDurationOrDefault("RELAY_TIMEOUT", 60*time.Second),
		RateLimitPerMinute:    getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 0),
		FrontendURL:           getEnvOrDefault("FRONTEND_URL", "*"),
	}
}

func LoadClient() *ClientConfig {
	godotenv.Load()

	return &ClientConfig{
		RelayURL:  getEnvOrDefault("ARGOCHAT_RELAY_URL", "http://localhost:3000"),
		Store:     getEnvOrDefault("ARGOCHAT_STORE", "file"),
		StorePath: getEnvOrDefault("ARGOCHAT_STORE_PATH", defaultStorePath()),
		RedisURL:  getEnvOrDefault("ARGOCHAT_REDIS_URL", ""),
		Namespace: getEnvOrDefault("ARGOCHAT_NAMESPACE", "promptbox"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".argochat"
	}
	return filepath.Join(home, ".argochat")
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
