// File: /config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseDriver string // mysql | postgres
	DatabaseURL    string
	DatabaseDebug  bool
	SeedDatabase   bool

	JWTSecret string

	// Comment tree
	TreeCountStrategy string // cte | walk

	// Notification fan-out
	NotificationWorkers        int
	NotificationQueueSize      int
	NotificationTimeout        time.Duration
	NotificationPublishTimeout time.Duration

	// Rate limiting
	RateLimitPerMinute int
	RateLimitBurst     int
	RateLimitClients   int

	// Email Configuration (notification emails are disabled when SMTPHost is empty)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

func Load() *Config {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseDriver: getEnv("DB_DRIVER", "mysql"),
		DatabaseURL:    getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/vastconnect?charset=utf8mb4&parseTime=True&loc=Local"),
		DatabaseDebug:  getEnvAsBool("DB_DEBUG", false),
		SeedDatabase:   getEnvAsBool("DB_SEED", false),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),

		TreeCountStrategy: getEnv("TREE_COUNT_STRATEGY", "cte"),

		NotificationWorkers:        getEnvAsInt("NOTIFICATION_WORKERS", 4),
		NotificationQueueSize:      getEnvAsInt("NOTIFICATION_QUEUE_SIZE", 1000),
		NotificationTimeout:        getEnvAsDuration("NOTIFICATION_TIMEOUT", 10*time.Second),
		NotificationPublishTimeout: getEnvAsDuration("NOTIFICATION_PUBLISH_TIMEOUT", 2*time.Second),

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 30),
		RateLimitClients:   getEnvAsInt("RATE_LIMIT_CLIENTS", 10000),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 2525),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@vastconnect.app"),
		FromName:     getEnv("FROM_NAME", "VastConnect"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
