package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("STOCK_SWEEP_INTERVAL", "")
	t.Setenv("PAYSTACK_BASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := fromViper(newViper())

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.Hour, cfg.StockSweepInterval)
	assert.Equal(t, "https://api.paystack.co", cfg.PaystackBaseURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.True(t, cfg.IsDev())
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("STOCK_SWEEP_INTERVAL", "15m")

	cfg := fromViper(newViper())

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, cfg.StockSweepInterval)
	assert.False(t, cfg.IsDev())
}
