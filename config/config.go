package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var (
	PORT        string
	APP_ENV     string
	APP_URL     string
	CORS_ORIGIN string
	DB_URL      string
	JWT_SECRET  string

	REDIS_ADDR     string
	REDIS_PASSWORD string
	CACHE_TTL      time.Duration

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	// Money settings are in minor units (cents).
	CURRENCY                string
	SHIPPING_FEE            int64
	FREE_SHIPPING_THRESHOLD int64
	PENDING_ORDER_TTL       time.Duration

	SMTP_HOST     string
	SMTP_PORT     string
	SMTP_FROM     string
	SMTP_PASSWORD string
	ADMIN_EMAIL   string

	STORAGE_DISK       string
	STORAGE_LOCAL_ROOT string
	STORAGE_URL        string
	S3_BUCKET          string
	S3_REGION          string
	S3_KEY             string
	S3_SECRET          string
	S3_ENDPOINT        string
	S3_URL             string
	MAX_UPLOAD_MB      int64

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string

	SEED_ADMIN_EMAIL    string
	SEED_ADMIN_PASSWORD string
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	APP_ENV = getEnv("APP_ENV", "development")
	APP_URL = getEnv("APP_URL", "http://localhost:3000")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", APP_URL)
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	REDIS_ADDR = getEnv("REDIS_ADDR", "")
	REDIS_PASSWORD = getEnv("REDIS_PASSWORD", "")
	CACHE_TTL = getDuration("CACHE_TTL", 2*time.Minute)

	STRIPE_SECRET_KEY = getEnv("STRIPE_SECRET_KEY", "")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")

	CURRENCY = getEnv("CURRENCY", "eur")
	SHIPPING_FEE = getInt("SHIPPING_FEE", 1500)
	FREE_SHIPPING_THRESHOLD = getInt("FREE_SHIPPING_THRESHOLD", 50000)
	PENDING_ORDER_TTL = getDuration("PENDING_ORDER_TTL", 24*time.Hour)

	SMTP_HOST = getEnv("SMTP_HOST", "")
	SMTP_PORT = getEnv("SMTP_PORT", "587")
	SMTP_FROM = getEnv("SMTP_FROM", "")
	SMTP_PASSWORD = getEnv("SMTP_PASSWORD", "")
	ADMIN_EMAIL = getEnv("ADMIN_EMAIL", "")

	STORAGE_DISK = getEnv("STORAGE_DISK", "local")
	STORAGE_LOCAL_ROOT = getEnv("STORAGE_LOCAL_ROOT", "storage")
	STORAGE_URL = getEnv("STORAGE_URL", "http://localhost:"+PORT+"/storage")
	S3_BUCKET = getEnv("S3_BUCKET", "")
	S3_REGION = getEnv("S3_REGION", "eu-central-1")
	S3_KEY = getEnv("S3_KEY", "")
	S3_SECRET = getEnv("S3_SECRET", "")
	S3_ENDPOINT = getEnv("S3_ENDPOINT", "")
	S3_URL = getEnv("S3_URL", "")
	MAX_UPLOAD_MB = getInt("MAX_UPLOAD_MB", 10)

	GOOGLE_CLIENT_ID = getEnv("GOOGLE_CLIENT_ID", "")
	GOOGLE_CLIENT_SECRET = getEnv("GOOGLE_CLIENT_SECRET", "")
	GOOGLE_REDIRECT_URL = getEnv("GOOGLE_REDIRECT_URL", "")
	GOOGLE_FRONTEND_REDIRECT = getEnv("GOOGLE_FRONTEND_REDIRECT", "")

	SEED_ADMIN_EMAIL = getEnv("SEED_ADMIN_EMAIL", "")
	SEED_ADMIN_PASSWORD = getEnv("SEED_ADMIN_PASSWORD", "")
}

// GoogleEnabled reports whether Google sign-in is configured.
func GoogleEnabled() bool {
	return GOOGLE_CLIENT_ID != "" && GOOGLE_CLIENT_SECRET != "" && GOOGLE_REDIRECT_URL != ""
}

func IsProduction() bool {
	return APP_ENV == "production" || APP_ENV == "prod"
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatal().Str("key", key).Msg("Missing required environment variable")
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid integer, using default")
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid duration, using default")
		return fallback
	}
	return v
}
