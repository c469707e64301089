package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string
	SeedDev      bool

	// Identity provider sessions (opaque to clients, HS256 JWT on the wire)
	SessionCookie     string
	IdentityJWTSecret string

	// Billing status feed. An empty webhook secret means no billing
	// integration is configured and upload entitlement is not gated.
	BillingWebhookSecret string

	// Telemetry sink (optional, disabled when endpoint is empty)
	AnalyticsEndpoint string
	AnalyticsAPIKey   string

	// Observability (optional)
	SentryDSN string

	// Object storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services

	// Rate limiting for the upload-intent endpoint
	UploadRatePerMinute int
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Clipship"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8090"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/clipship.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),
		SeedDev:      envBool("SEED_DEV", false),

		SessionCookie:     envString("SESSION_COOKIE", "access_token"),
		IdentityJWTSecret: envRequired("IDENTITY_JWT_SECRET"),

		BillingWebhookSecret: envString("BILLING_WEBHOOK_SECRET", ""),

		AnalyticsEndpoint: envString("ANALYTICS_ENDPOINT", ""),
		AnalyticsAPIKey:   envString("ANALYTICS_API_KEY", ""),

		SentryDSN: envString("SENTRY_DSN", ""),

		S3Region:    envRequired("S3_REGION"),
		S3Bucket:    envString("S3_BUCKET", "videos"),
		S3AccessKey: envRequired("S3_ACCESS_KEY"),
		S3SecretKey: envRequired("S3_SECRET_KEY"),
		S3Endpoint:  envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers

		UploadRatePerMinute: envInt("UPLOAD_RATE_PER_MINUTE", 10),
	}

	return cfg
}

// BillingConfigured reports whether a billing integration feeds subscription
// status into profiles. Upload entitlement is only gated when it does.
func (c *Config) BillingConfigured() bool {
	return c.BillingWebhookSecret != ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}
