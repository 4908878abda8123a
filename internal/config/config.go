package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the reminder service.
type Config struct {
	DatabaseURL    string
	HTTPAddr       string
	TelegramToken  string
	TelegramChatID int64
	ResyncInterval time.Duration
	LogLevel       string
	LogPretty      bool
}

// Load reads configuration from an optional .env file and environment
// variables with sane defaults. The Telegram credentials are optional: without
// them notifications are only logged.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:       strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		ResyncInterval: parseInterval(strings.TrimSpace(os.Getenv("RESYNC_INTERVAL_HOURS"))),
		LogLevel:       strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		LogPretty:      parseBool(strings.TrimSpace(os.Getenv("LOG_PRETTY"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "zenremind.db"
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8710"
	}

	if cfg.ResyncInterval == 0 {
		cfg.ResyncInterval = 6 * time.Hour
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramChatID = chatID
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseBool(raw string) bool {
	value, err := strconv.ParseBool(raw)
	return err == nil && value
}
