// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	strutil "employeeapp/pkg/platform/strings"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Notification sinks.
const (
	SinkWebhook = "webhook"
	SinkKafka   = "kafka"
	SinkAMQP    = "amqp"
	SinkNone    = "none"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = time.Hour

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string

	// StartupMaxElapsed bounds how long main retries dependencies before binding.
	StartupMaxElapsed time.Duration

	Auth   Auth
	Store  Store
	Notify Notify
	Redis  RedisConfig
	Ledger Ledger
}

// Auth holds token signing settings and the operator directory used by login.
type Auth struct {
	// JWTSecret is never defaulted. An empty value makes token issue and
	// verification fail with a configuration error.
	JWTSecret string
	Issuer    string
	Operator  Operator
}

// Operator is the single account that may log in.
type Operator struct {
	ID       int64
	Name     string
	Role     string
	Username string
}

// Store selects and configures persistence.
type Store struct {
	Backend string
	Driver  string
	DSN     string
}

// Notify configures the notification dispatcher and its sink.
type Notify struct {
	Sink         string
	Timeout      time.Duration
	Workers      int
	QueueSize    int
	WebhookURL   string
	WebhookToken string
	KafkaBrokers []string
	KafkaTopic   string
	AMQPURL      string
	AMQPQueue    string

	// BreakerThreshold is the number of consecutive failures that open the
	// delivery circuit. Zero leaves the breaker off and every event gets one
	// attempt.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// RedisConfig configures the idempotency store. An empty URL selects the
// in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Ledger configures the simulated ledger. A zero MaxCredit disables the ceiling.
type Ledger struct {
	MaxCredit decimal.Decimal
}

// Load reads .env.<APP_ENV> and .env when present, then builds the config.
// Variables already set in the environment win over file values.
func Load() (Server, error) {
	env := os.Getenv("APP_ENV")
	if env != "" {
		_ = godotenv.Load(".env." + env)
	}
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        ":" + getEnv("PORT", "3000"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		CORSOrigins: strutil.SplitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		Auth: Auth{
			JWTSecret: os.Getenv("JWT_SECRET"),
			Issuer:    getEnv("JWT_ISSUER", "employeeapp"),
			Operator: Operator{
				Name:     getEnv("OPERATOR_NAME", "Rowland"),
				Role:     getEnv("OPERATOR_ROLE", "Admin"),
				Username: getEnv("OPERATOR_USERNAME", "admin"),
			},
		},
		Store: Store{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", StorePostgres)),
			Driver:  strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			DSN:     databaseURL(),
		},
		Notify: Notify{
			Sink:         strings.ToLower(getEnv("NOTIFY_SINK", SinkNone)),
			WebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
			WebhookToken: os.Getenv("NOTIFY_WEBHOOK_TOKEN"),
			KafkaBrokers: strutil.SplitList(os.Getenv("KAFKA_BROKERS")),
			KafkaTopic:   getEnv("KAFKA_TOPIC", "employee-events"),
			AMQPURL:      os.Getenv("AMQP_URL"),
			AMQPQueue:    getEnv("AMQP_QUEUE", "employee_events"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	var err error
	if cfg.Auth.Operator.ID, err = getInt64("OPERATOR_ID", 1); err != nil {
		return Server{}, err
	}
	if cfg.Notify.Timeout, err = getDuration("NOTIFY_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.StartupMaxElapsed, err = getDuration("STARTUP_MAX_ELAPSED", time.Minute); err != nil {
		return Server{}, err
	}
	workers, err := getInt64("NOTIFY_WORKERS", 4)
	if err != nil {
		return Server{}, err
	}
	cfg.Notify.Workers = int(workers)
	queue, err := getInt64("NOTIFY_QUEUE_SIZE", 256)
	if err != nil {
		return Server{}, err
	}
	cfg.Notify.QueueSize = int(queue)
	threshold, err := getInt64("NOTIFY_BREAKER_THRESHOLD", 0)
	if err != nil {
		return Server{}, err
	}
	cfg.Notify.BreakerThreshold = int(threshold)
	if cfg.Notify.BreakerCooldown, err = getDuration("NOTIFY_BREAKER_COOLDOWN", 30*time.Second); err != nil {
		return Server{}, err
	}

	if raw := os.Getenv("LEDGER_MAX_CREDIT"); raw != "" {
		maxCredit, err := decimal.NewFromString(raw)
		if err != nil {
			return Server{}, fmt.Errorf("parse LEDGER_MAX_CREDIT: %w", err)
		}
		cfg.Ledger.MaxCredit = maxCredit
	}

	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	switch c.Store.Backend {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	switch c.Store.Driver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Store.Driver)
	}
	switch c.Notify.Sink {
	case SinkNone:
	case SinkWebhook:
		if c.Notify.WebhookURL == "" {
			return fmt.Errorf("NOTIFY_WEBHOOK_URL is required for the webhook sink")
		}
	case SinkKafka:
		if len(c.Notify.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for the kafka sink")
		}
	case SinkAMQP:
		if c.Notify.AMQPURL == "" {
			return fmt.Errorf("AMQP_URL is required for the amqp sink")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_SINK %q", c.Notify.Sink)
	}
	if c.Notify.Workers < 1 {
		return fmt.Errorf("NOTIFY_WORKERS must be positive")
	}
	if c.Notify.QueueSize < 1 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must be positive")
	}
	if c.Notify.BreakerThreshold < 0 {
		return fmt.Errorf("NOTIFY_BREAKER_THRESHOLD must not be negative")
	}
	if c.Notify.BreakerThreshold > 0 && c.Notify.BreakerCooldown <= 0 {
		return fmt.Errorf("NOTIFY_BREAKER_COOLDOWN must be positive when the breaker is on")
	}
	if c.Ledger.MaxCredit.IsNegative() {
		return fmt.Errorf("LEDGER_MAX_CREDIT must not be negative")
	}
	return nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from DB_* parts.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getEnv("DB_USER", "postgres"), os.Getenv("DB_PASSWORD")),
		Host:   getEnv("DB_HOST", "localhost") + ":" + getEnv("DB_PORT", "5432"),
		Path:   "/" + getEnv("DB_NAME", "employees"),
	}
	q := u.Query()
	q.Set("sslmode", getEnv("DB_SSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}
