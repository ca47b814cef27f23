package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string

	// Server
	ServerAddr string
	BaseURL    string

	// Storage
	DatabaseURL string
	RedisURL    string // Optional; shares HTTP limiter and session state across replicas

	// Identity
	IdentityHeader string // Trusted header carrying a client cert CN, e.g. "X-Client-CN"
	SessionSecret  string // Used for encrypting cookies (base64, 32 bytes)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// HTTP
	HTTPRateLimit int // Requests per minute per IP

	// Pipeline
	MaxCommentLength    int
	MaxSuggestionLength int
	TrustScoreFloor     int

	// Background jobs
	BadWordsRefresh   time.Duration
	ReconcileInterval time.Duration // 0 disables

	// Moderation YAML file
	ModerationConfigFile string

	// Email
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // none, tls, starttls

	EmailNotifyAuthors    bool
	EmailNotifyModerators bool

	// Site Branding
	SiteTitle string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ServerAddr: getEnv("SERVER_ADDR", ":3000"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:3000"),

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/golists?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),

		IdentityHeader: getEnv("IDENTITY_HEADER", ""),
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		CORSOrigins:    getEnv("CORS_ORIGINS", ""),
		HTTPRateLimit:  getEnvInt("HTTP_RATE_LIMIT", 100),

		MaxCommentLength:    getEnvInt("MAX_COMMENT_LENGTH", 2000),
		MaxSuggestionLength: getEnvInt("MAX_SUGGESTION_LENGTH", 200),
		TrustScoreFloor:     getEnvInt("TRUST_SCORE_FLOOR", -100),

		BadWordsRefresh:   getEnvDuration("BADWORDS_REFRESH", 30*time.Second),
		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", time.Hour),

		ModerationConfigFile: getEnv("MODERATION_CONFIG", "moderation.yaml"),

		SMTPEnabled:  getEnvBool("SMTP_ENABLED", false),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "GoLists"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		EmailNotifyAuthors:    getEnvBool("EMAIL_NOTIFY_AUTHORS", true),
		EmailNotifyModerators: getEnvBool("EMAIL_NOTIFY_MODERATORS", true),

		SiteTitle: getEnv("SITE_TITLE", "GoLists"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is switched on and minimally configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}
