package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all process settings, sourced from the environment
// (with an optional local .env for development).
type Config struct {
	BotToken string
	OwnerID  int64

	BankName string
	Currency string

	// Store backend: "sheets" (default), "postgres" or "memory".
	StoreBackend string

	SpreadsheetID   string
	SheetName       string
	CredentialsJSON []byte

	PostgresDSN string

	ManagersFile string
	LogChannelID int64

	KafkaBrokers []string
	AuditTopic   string

	HealthAddr      string
	TransferTTL     time.Duration
	AutoDeleteDelay time.Duration
}

// Load reads configuration from the environment. BOT_TOKEN and
// OWNER_ID are mandatory; everything else has a sensible default.
func Load() (Config, error) {
	// Missing .env is fine, env vars may come from the platform.
	_ = godotenv.Load()

	cfg := Config{
		BotToken:        os.Getenv("BOT_TOKEN"),
		BankName:        getDefault("BANK_NAME", "River Bank"),
		Currency:        getDefault("CURRENCY", "₱"),
		StoreBackend:    getDefault("STORE_BACKEND", "sheets"),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		SheetName:       getDefault("SHEET_NAME", "Sheet1"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		ManagersFile:    getDefault("MANAGERS_FILE", "managers.json"),
		AuditTopic:      getDefault("AUDIT_TOPIC", "bank_audit"),
		HealthAddr:      getDefault("HEALTH_ADDR", ":8080"),
		TransferTTL:     5 * time.Minute,
		AutoDeleteDelay: 2 * time.Minute,
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN is required")
	}

	ownerRaw := os.Getenv("OWNER_ID")
	if ownerRaw == "" {
		return Config{}, fmt.Errorf("OWNER_ID is required")
	}
	ownerID, err := strconv.ParseInt(ownerRaw, 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("OWNER_ID must be a numeric Telegram id: %w", err)
	}
	cfg.OwnerID = ownerID

	if raw := os.Getenv("LOG_CHANNEL_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("LOG_CHANNEL_ID must be numeric: %w", err)
		}
		cfg.LogChannelID = id
	}

	if raw := os.Getenv("GOOGLE_CREDENTIALS_JSON"); raw != "" {
		cfg.CredentialsJSON = []byte(raw)
	} else if file := os.Getenv("GOOGLE_CREDENTIALS_FILE"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return Config{}, fmt.Errorf("read credentials file: %w", err)
		}
		cfg.CredentialsJSON = data
	}

	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if raw := os.Getenv("TRANSFER_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("TRANSFER_TTL: %w", err)
		}
		cfg.TransferTTL = ttl
	}
	if raw := os.Getenv("AUTODELETE_DELAY"); raw != "" {
		delay, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("AUTODELETE_DELAY: %w", err)
		}
		cfg.AutoDeleteDelay = delay
	}

	switch cfg.StoreBackend {
	case "sheets":
		if cfg.SpreadsheetID == "" {
			return Config{}, fmt.Errorf("SPREADSHEET_ID is required for the sheets backend")
		}
		if len(cfg.CredentialsJSON) == 0 {
			return Config{}, fmt.Errorf("GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE is required for the sheets backend")
		}
	case "postgres":
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
		}
	case "memory":
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func getDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
