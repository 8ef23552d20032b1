package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Registration Store backend: "sqlite", "postgres" or "firestore".
	StoreDriver        string
	DatabaseURL        string
	FirestoreProjectID string
	RedisURL           string

	AdminEmails        []string
	Timezone           string
	MaxAttachmentBytes int64
	SessionTTL         time.Duration
}

var defaultAdminEmails = []string{"admin@gmail.com", "vyaparadmin@gmail.com"}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		RedisURL:           os.Getenv("REDIS_URL"),
		AdminEmails:        splitList(os.Getenv("ADMIN_EMAILS")),
		Timezone:           getEnv("TIMEZONE", "Asia/Kolkata"),
		MaxAttachmentBytes: getInt64("MAX_ATTACHMENT_BYTES", 5<<20),
		SessionTTL:         getDuration("SESSION_TTL", 24*time.Hour),
	}
	if len(cfg.AdminEmails) == 0 {
		cfg.AdminEmails = append([]string(nil), defaultAdminEmails...)
	}
	if cfg.DatabaseURL == "" && cfg.StoreDriver != "postgres" {
		cfg.DatabaseURL = "vyaparsetu.db"
	}

	if cfg.Env == "production" {
		if cfg.StoreDriver == "postgres" && cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production for the postgres store")
		}
		if cfg.StoreDriver == "firestore" && cfg.FirestoreProjectID == "" {
			panic("FIRESTORE_PROJECT_ID is required in production for the firestore store")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location resolves Timezone, falling back to a fixed IST offset when tzdata is missing.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
