// Package config loads service configuration from the environment. The
// result is a plain struct handed to main and passed down explicitly; no
// package keeps configuration in globals.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the API process needs.
type Config struct {
	Port string

	// MySQL connection settings.
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Gemini model used for insight generation.
	GeminiModel string

	// ArchiveBucket enables GCS archival of raw model responses when set.
	ArchiveBucket string

	// Bank-data aggregator credentials.
	AggregatorURL      string
	AggregatorClientID string
	AggregatorSecret   string

	// Retry policy for model calls.
	MaxRetries     int
	RetryBaseDelay time.Duration

	// ModelTimeout bounds each model call. Zero means no explicit deadline,
	// leaving only the network client's own limits.
	ModelTimeout time.Duration
}

// Load reads .env (when present) and the environment.
func Load() Config {
	godotenv.Load()

	return Config{
		Port:               getenv("PORT", "8080"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBHost:             getenv("DB_HOST", "127.0.0.1"),
		DBPort:             getenv("DB_PORT", "3306"),
		DBName:             getenv("DB_NAME", "spendlens"),
		GeminiModel:        os.Getenv("GEMINI_MODEL"),
		ArchiveBucket:      os.Getenv("ARCHIVE_BUCKET"),
		AggregatorURL:      os.Getenv("AGGREGATOR_URL"),
		AggregatorClientID: os.Getenv("AGGREGATOR_CLIENT_ID"),
		AggregatorSecret:   os.Getenv("AGGREGATOR_SECRET"),
		MaxRetries:         intFromEnv("MODEL_MAX_RETRIES", 3),
		RetryBaseDelay:     durationFromEnv("MODEL_RETRY_BASE_DELAY", time.Second),
		ModelTimeout:       durationFromEnv("MODEL_TIMEOUT", 0),
	}
}

// DSN builds the MySQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
