package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, StorePostgres, cfg.Store.Backend)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Contains(t, cfg.Store.DSN, "sslmode=disable")
	assert.Empty(t, cfg.Auth.JWTSecret, "secret must never be defaulted")
	assert.Equal(t, int64(1), cfg.Auth.Operator.ID)
	assert.Equal(t, "Admin", cfg.Auth.Operator.Role)
	assert.Equal(t, SinkNone, cfg.Notify.Sink)
	assert.Equal(t, 5*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, "employee_events", cfg.Notify.AMQPQueue)
	assert.Zero(t, cfg.Notify.BreakerThreshold, "breaker is opt-in")
	assert.True(t, cfg.Ledger.MaxCredit.IsZero())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/hr")
	t.Setenv("NOTIFY_SINK", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("NOTIFY_TIMEOUT", "2s")
	t.Setenv("LEDGER_MAX_CREDIT", "250000.50")
	t.Setenv("NOTIFY_BREAKER_THRESHOLD", "5")
	t.Setenv("NOTIFY_BREAKER_COOLDOWN", "1m")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "postgres://u:p@db:5432/hr", cfg.Store.DSN)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notify.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.Notify.Timeout)
	assert.Equal(t, "250000.5", cfg.Ledger.MaxCredit.String())
	assert.Equal(t, 5, cfg.Notify.BreakerThreshold)
	assert.Equal(t, time.Minute, cfg.Notify.BreakerCooldown)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":       {"STORE_BACKEND": "mongo"},
		"unknown driver":        {"DB_DRIVER": "mysql"},
		"webhook without url":   {"NOTIFY_SINK": "webhook", "NOTIFY_WEBHOOK_URL": ""},
		"amqp without url":      {"NOTIFY_SINK": "amqp", "AMQP_URL": ""},
		"bad timeout":           {"NOTIFY_TIMEOUT": "soon"},
		"bad operator id":       {"OPERATOR_ID": "one"},
		"negative ledger limit": {"LEDGER_MAX_CREDIT": "-1"},
		"zero workers":          {"NOTIFY_WORKERS": "0"},
		"negative breaker":      {"NOTIFY_BREAKER_THRESHOLD": "-1"},
		"breaker without wait":  {"NOTIFY_BREAKER_THRESHOLD": "3", "NOTIFY_BREAKER_COOLDOWN": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
