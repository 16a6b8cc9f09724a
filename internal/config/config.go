package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	// FrontendURL is used to build checkout callback URLs
	FrontendURL string
	CORSOrigins []string

	// CertificatePrefix is the platform tag in front of every certificate id
	CertificatePrefix string

	Casdoor   CasdoorConfig
	Stripe    StripeConfig
	Mail      MailConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

type StripeConfig struct {
	SecretKey string
	BaseURL   string
	Currency  string
	Timeout   time.Duration
}

type MailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
}

// Enabled reports whether events go to Kafka instead of the in-process channel
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// RateLimitConfig throttles the public certificate verification endpoint
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		CertificatePrefix: strings.ToUpper(getEnv("CERTIFICATE_PREFIX", "AIC")),
		Casdoor: CasdoorConfig{
			Endpoint:     getEnv("CASDOOR_ENDPOINT", ""),
			ClientID:     getEnv("CASDOOR_CLIENT_ID", ""),
			ClientSecret: getEnv("CASDOOR_CLIENT_SECRET", ""),
			Cert:         getEnv("CASDOOR_CERT", ""),
			Organization: getEnv("CASDOOR_ORGANIZATION", ""),
			Application:  getEnv("CASDOOR_APPLICATION", ""),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			BaseURL:   getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
			Currency:  strings.ToLower(getEnv("STRIPE_CURRENCY", "usd")),
			Timeout:   getEnvDuration("STRIPE_TIMEOUT", 10*time.Second),
		},
		Mail: MailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("MAIL_FROM_EMAIL", "no-reply@example.com"),
			FromName:       getEnv("MAIL_FROM_NAME", "Course Platform"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getEnv("KAFKA_BROKERS", "")),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "course-service-notifications"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("VERIFY_RATE_LIMIT_RPS", 5),
			Burst:             getEnvInt("VERIFY_RATE_LIMIT_BURST", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.CertificatePrefix == "" {
		return errors.New("CERTIFICATE_PREFIX must not be empty")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("invalid verification rate limit: %v req/s burst %d", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
