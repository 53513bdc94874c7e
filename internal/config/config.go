package config

import (
	"fmt"
	"os"
	"strconv"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string
	AdminChatID   int64

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)

	// Storage configuration
	StorageBackend string // sqlite, json or memory
	DBPath         string // sqlite database file
	StatePath      string // json state file

	// Observability
	SentryDSN   string
	Environment string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Admin chat (required): new questions are forwarded here and its owner
	// is always authorized for admin operations.
	adminIDStr := os.Getenv("ADMIN_CHAT_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_CHAT_ID is required (numeric Telegram chat ID)")
	}
	adminID, err := strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_CHAT_ID: %s", adminIDStr)
	}
	config.AdminChatID = adminID

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	// Storage backend (default: sqlite)
	config.StorageBackend = os.Getenv("STORAGE_BACKEND")
	if config.StorageBackend == "" {
		config.StorageBackend = BackendSQLite
	}
	switch config.StorageBackend {
	case BackendSQLite, BackendJSON, BackendMemory:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %s (expected sqlite, json or memory)", config.StorageBackend)
	}

	config.DBPath = os.Getenv("DB_PATH")
	if config.DBPath == "" {
		config.DBPath = "./db/supportbot.db"
	}

	config.StatePath = os.Getenv("STATE_PATH")
	if config.StatePath == "" {
		config.StatePath = "./supportbot.json"
	}

	config.SentryDSN = os.Getenv("SENTRY_DSN")
	config.Environment = os.Getenv("ENVIRONMENT")
	if config.Environment == "" {
		config.Environment = "production"
	}

	return config, nil
}
