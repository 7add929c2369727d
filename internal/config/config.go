package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret is only accepted with APP_ENV=development.
const DefaultJWTSecret = "dev-secret-please-change"

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Port string
	Env  string

	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	JWTSecret  string
	SessionTTL time.Duration

	// session issuance per client IP
	SessionRatePerMinute int
	SessionRateBurst     int

	PaypalBaseURL string
	PaypalAccount string
	PaymentDelay  time.Duration

	KafkaBrokers  []string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string

	ResendAPIKey string
	NoticeFrom   string
	NoticeTo     string

	UseEmailReputation bool
	AbstractAPIKey     string
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		Env:         getenv("APP_ENV", "production"),
		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", StoreMemory)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "storefront.db"),

		JWTSecret:  getenv("JWT_SECRET", DefaultJWTSecret),
		SessionTTL: time.Duration(getint("SESSION_TTL_HOURS", 72)) * time.Hour,

		SessionRatePerMinute: getint("SESSION_RATE_PER_MINUTE", 30),
		SessionRateBurst:     getint("SESSION_RATE_BURST", 10),

		PaypalBaseURL: getenv("PAYPAL_BASE_URL", "https://www.paypal.me"),
		PaypalAccount: getenv("PAYPAL_ACCOUNT", "Fxstudio712"),
		PaymentDelay:  time.Duration(getint("PAYMENT_DELAY_MS", 1200)) * time.Millisecond,

		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getenv("KAFKA_TOPIC", "storefront.orders"),
		KafkaUsername: os.Getenv("KAFKA_USERNAME"),
		KafkaPassword: os.Getenv("KAFKA_PASSWORD"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		NoticeFrom:   getenv("NOTICE_FROM", "MusicStore<onboarding@resend.dev>"),
		NoticeTo:     os.Getenv("NOTICE_TO"),

		UseEmailReputation: os.Getenv("USE_EMAIL_REPUTATION") == "true",
		AbstractAPIKey:     os.Getenv("ABSTRACT_EMAIL_API_KEY"),
	}
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects settings that are only safe on a developer machine.
func (c Config) Validate() error {
	if c.JWTSecret == DefaultJWTSecret && !c.IsDevelopment() {
		return errors.New("JWT_SECRET must be set outside development")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
