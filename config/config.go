package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTPAddr string

	StoreDriver       string
	MongoConnString   string
	MongoDatabase     string
	SQLDSN            string
	RequestTimeout    time.Duration
	SigningKey        string
	TokenTTL          time.Duration
	SeedAdminEmail    string
	SeedAdminPassword string

	PaymentProvider string
	PaymentSecret   string
	PaymentDelay    time.Duration

	TelegramToken       string
	TelegramAdminChatID int64

	GoogleServiceAccountJSON string
	SpreadsheetID            string
}

func GetSecret(key string) (string, error) {
	val, exist := os.LookupEnv(key)
	if exist {
		return val, nil
	}
	return "", fmt.Errorf("no env variable with key %v", key)
}

func FromEnv() (Config, error) {
	var c Config
	c.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	c.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite))
	c.MongoConnString = getEnv("MONGODB_CONNSTRING", "")
	c.MongoDatabase = getEnv("MONGODB_DATABASE", "eventease")
	c.SQLDSN = getEnv("SQL_DSN", "file:eventease.db")

	c.SeedAdminEmail = strings.ToLower(getEnv("ADMIN_EMAIL", ""))
	c.SeedAdminPassword = getEnv("ADMIN_PASSWORD", "")

	c.PaymentProvider = getEnv("PAYMENT_PROVIDER", "stub")
	c.PaymentSecret = getEnv("PAYMENT_SECRET", "change-me")

	c.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	c.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	c.SpreadsheetID = getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", "")

	var err error
	if c.SigningKey, err = GetSecret("SIGN"); err != nil || strings.TrimSpace(c.SigningKey) == "" {
		return c, fmt.Errorf("SIGN is empty")
	}
	if c.TokenTTL, err = getDuration("TOKEN_TTL", 8*time.Hour); err != nil {
		return c, err
	}
	if c.PaymentDelay, err = getDuration("PAYMENT_DELAY", 1500*time.Millisecond); err != nil {
		return c, err
	}
	if c.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return c, err
	}

	if raw := getEnv("TELEGRAM_ADMIN_CHAT_ID", ""); raw != "" {
		c.TelegramAdminChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID: %w", err)
		}
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoConnString == "" {
			return c, fmt.Errorf("MONGODB_CONNSTRING is empty")
		}
	case DriverSQLite, DriverPostgres:
		if c.SQLDSN == "" {
			return c, fmt.Errorf("SQL_DSN is empty")
		}
	default:
		return c, fmt.Errorf("unknown store driver: %s", c.StoreDriver)
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
