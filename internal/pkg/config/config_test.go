package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "USER_SERVICE_URL", "PRODUCT_SERVICE_URL",
		"LOOKUP_TIMEOUT", "REDIS_ADDR", "CACHE_TTL", "SAGA_LOG_PATH",
		"PAYMENT_SUCCESS_RATE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8003", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:8001", cfg.UserServiceURL)
	assert.Equal(t, "http://localhost:8002", cfg.ProductServiceURL)
	assert.Equal(t, 5*time.Second, cfg.LookupTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "saga.db", cfg.SagaLogPath)
	assert.Equal(t, 0.9, cfg.PaymentSuccessRate)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("USER_SERVICE_URL", "http://users.internal:8080")
	t.Setenv("LOOKUP_TIMEOUT", "250ms")
	t.Setenv("PAYMENT_SUCCESS_RATE", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "http://users.internal:8080", cfg.UserServiceURL)
	assert.Equal(t, 250*time.Millisecond, cfg.LookupTimeout)
	assert.Equal(t, 1.0, cfg.PaymentSuccessRate)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("LOOKUP_TIMEOUT", "soon")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-numeric rate", func(t *testing.T) {
		t.Setenv("PAYMENT_SUCCESS_RATE", "often")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rate out of range", func(t *testing.T) {
		t.Setenv("PAYMENT_SUCCESS_RATE", "1.5")
		_, err := Load()
		assert.ErrorContains(t, err, "must be in [0, 1]")
	})
}
