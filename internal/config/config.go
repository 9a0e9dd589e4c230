package config

import (
	"os"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	// Question store
	StoreBackend        string // sql, firestore or memory
	DatabaseType        string // sqlite, postgres or mysql
	DatabasePath        string
	DatabaseURL         string
	MigrationsPath      string
	GCPProjectID        string
	GCPClientEmail      string
	GCPPrivateKey       string
	FirestoreCollection string

	TemplatesPath string

	// Sign-in and access control
	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string
	SessionSecret        string
	SessionDuration      time.Duration
	AllowedEmails        string
	CORSOrigins          []string

	// Access notifications
	AWSRegion         string
	SESFromEmail      string
	SESFromName       string
	AccessNotifyEmail string
	AppBaseURL        string

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort: getEnv("PORT", "8080"),

		StoreBackend:        strings.ToLower(getEnv("STORE_BACKEND", "sql")),
		DatabaseType:        getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:        getEnv("DB_PATH", "./learningtime.db"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		MigrationsPath:      os.Getenv("MIGRATIONS_PATH"),
		GCPProjectID:        os.Getenv("GCP_PROJECT_ID"),
		GCPClientEmail:      os.Getenv("GCP_CLIENT_EMAIL"),
		GCPPrivateKey:       os.Getenv("GCP_PRIVATE_KEY"),
		FirestoreCollection: getEnv("FIRESTORE_COLLECTION", "questions"),

		TemplatesPath: getEnv("TEMPLATES_PATH", "./internal/templates"),

		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectBaseURL: os.Getenv("OAUTH_REDIRECT_BASE_URL"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		SessionDuration:      getDuration("SESSION_DURATION", 30*24*time.Hour),
		AllowedEmails:        os.Getenv("ALLOWED_EMAILS"),
		CORSOrigins:          getCSV("CORS_ORIGINS", ""),

		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:      os.Getenv("SES_FROM_EMAIL"),
		SESFromName:       getEnv("SES_FROM_NAME", "Learning Time"),
		AccessNotifyEmail: os.Getenv("ACCESS_NOTIFY_EMAIL"),
		AppBaseURL:        getEnv("APP_BASE_URL", "http://localhost:8080"),

		Debug: getBool("DEBUG", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return defaultValue
	}
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// getCSV splits a comma separated variable, dropping blank entries
func getCSV(key, defaultValue string) []string {
	parts := strings.Split(getEnv(key, defaultValue), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
