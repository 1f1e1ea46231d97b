package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Optional backing services. The service runs volatile-only without them.
	DatabaseURL string // PostgreSQL archive
	ArchivePath string // SQLite archive, used when DatabaseURL is empty
	RedisURL    string // sessions + rate limiting

	SessionTTL time.Duration

	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting

	// Notification sink credentials. Both empty is a legitimate inert state.
	TelegramBotToken string
	TelegramChatID   string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ArchivePath:      os.Getenv("ARCHIVE_PATH"),
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}

	cfg.SessionTTL, _ = time.ParseDuration(os.Getenv("SESSION_TTL"))

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// NotifyConfigured reports whether the Telegram sink has credentials.
func (c *Config) NotifyConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
