package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Local cache (sqlite), the app cannot run without it
	LocalDBPath    string
	MigrationsPath string

	// Remote relational service, optional and possibly unreachable
	RemoteDBType  string // "postgres", "mysql" or "" (disabled)
	RemoteDBURL   string
	RemoteTimeout time.Duration

	// External content registry (deployed web app endpoint)
	RegistryURL      string
	ResultWebhookURL string

	// Pull-sync staleness policy
	SyncFreshness     time.Duration
	SyncMinLocalCount int

	// Session
	SessionSecret   string
	SessionDuration time.Duration

	// Credentials email (disabled when SES_FROM_EMAIL is empty)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		LocalDBPath:       getEnv("LOCAL_DB_PATH", "./curiousminds.db"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "./migrations"),
		RemoteDBType:      getEnv("REMOTE_DB_TYPE", ""),
		RemoteDBURL:       getEnv("REMOTE_DB_URL", ""),
		RemoteTimeout:     getEnvDuration("REMOTE_TIMEOUT", 10*time.Second),
		RegistryURL:       getEnv("REGISTRY_URL", ""),
		ResultWebhookURL:  getEnv("RESULT_WEBHOOK_URL", ""),
		SyncFreshness:     getEnvDuration("SYNC_FRESHNESS", 24*time.Hour),
		SyncMinLocalCount: getEnvInt("SYNC_MIN_LOCAL_COUNT", 100),
		SessionSecret:     getEnv("SESSION_SECRET", "curiousminds-dev-secret"),
		SessionDuration:   getEnvDuration("SESSION_DURATION", 30*24*time.Hour),
		AWSRegion:         getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Curious Minds"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid value for %s, using default", key)
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid value for %s, using default", key)
	}
	return defaultValue
}
