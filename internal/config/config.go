// Package config provides configuration helpers for voicebridge.
// All configuration comes from environment variables, matching the
// deployment model of the telephony provider (one process per region,
// secrets injected by the platform).
package config

import (
	"fmt"
	"os"
)

// Defaults for optional settings.
const (
	DefaultPort      = "5000"
	DefaultLogLevel  = "info"
	DefaultNamespace = "products"
)

// Config holds the full service configuration.
type Config struct {
	Port     string
	LogLevel string

	// AI session
	OpenAIAPIKey string

	// Product search
	GoogleAPIKey      string
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string

	// Directory (Postgres)
	DatabaseURL string

	// Scheduling
	GoogleCredentialsFile string
	CalendarID            string

	// Notification pipeline
	StorageURL        string
	StorageServiceKey string
	PlivoAuthID       string
	PlivoAuthToken    string
	WhatsAppNumber    string
}

// Load reads the service configuration from the environment.
// It returns an error naming the first missing required variable.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                  Get("PORT", DefaultPort),
		LogLevel:              Get("LOG_LEVEL", DefaultLogLevel),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:          os.Getenv("GOOGLE_API_KEY"),
		PineconeAPIKey:        os.Getenv("PINECONE_API_KEY"),
		PineconeIndexHost:     os.Getenv("PINECONE_INDEX_HOST"),
		PineconeNamespace:     Get("PINECONE_NAMESPACE", DefaultNamespace),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		CalendarID:            Get("CALENDAR_ID", "primary"),
		StorageURL:            os.Getenv("STORAGE_URL"),
		StorageServiceKey:     os.Getenv("STORAGE_SERVICE_KEY"),
		PlivoAuthID:           os.Getenv("PLIVO_AUTH_ID"),
		PlivoAuthToken:        os.Getenv("PLIVO_AUTH_TOKEN"),
		WhatsAppNumber:        os.Getenv("WHATSAPP_NUMBER"),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("config: OPENAI_API_KEY environment variable is not set")
	}

	return cfg, nil
}

// Get returns the value of an environment variable.
// Falls back to the provided default if not set.
func Get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Required returns the value of an environment variable.
// Exits the process with a usage hint if not set.
func Required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "Error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}
