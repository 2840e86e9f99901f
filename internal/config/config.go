package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	BackendURL     string
	BackendTimeout time.Duration

	AuthJWTSecret      string
	AuthJWKSURL        string
	AuthPublishableKey string
	AuthSignInURL      string

	StripePublishableKey string

	RedisAddr string

	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
	EmailFrom     string
	EmailFromName string
	ContactInbox  string

	ContactCooldown time.Duration
	SessionTTL      time.Duration
	PaymentWindow   time.Duration
	CatalogTTL      time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		BackendURL:     getEnv("BACKEND_URL", "http://localhost:3001/api"),
		BackendTimeout: getDuration("BACKEND_TIMEOUT", 10*time.Second),

		AuthJWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
		AuthJWKSURL:        getEnv("AUTH_JWKS_URL", ""),
		AuthPublishableKey: getEnv("AUTH_PUBLISHABLE_KEY", ""),
		AuthSignInURL:      getEnv("AUTH_SIGN_IN_URL", "/sign-in"),

		StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "1025"),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@sunrisestay.com"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "SunriseStay"),
		ContactInbox:  getEnv("CONTACT_INBOX", "frontdesk@sunrisestay.com"),

		ContactCooldown: getDuration("CONTACT_COOLDOWN", 20*time.Minute),
		SessionTTL:      getDuration("SESSION_TTL", 2*time.Hour),
		PaymentWindow:   getDuration("PAYMENT_WINDOW", 30*time.Minute),
		CatalogTTL:      getDuration("CATALOG_TTL", 5*time.Minute),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}
