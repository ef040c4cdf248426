// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the order service configuration. Zero values are never used
// directly; Load fills every field with its default when the corresponding
// env var is unset.
type Config struct {
	// HTTPAddr is the listen address of the order API.
	HTTPAddr string

	// Collaborator service base URLs.
	UserServiceURL    string
	ProductServiceURL string

	// LookupTimeout bounds every user/product lookup call.
	LookupTimeout time.Duration

	// RedisAddr is the lookup cache backend. Empty disables caching.
	RedisAddr string
	CacheTTL  time.Duration

	// SagaLogPath is the SQLite file holding the saga audit log.
	SagaLogPath string

	// PaymentSuccessRate drives the simulated payment client, in [0, 1].
	PaymentSuccessRate float64
}

// Load reads the environment, applying defaults for unset variables.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8003"),
		UserServiceURL:    getEnv("USER_SERVICE_URL", "http://localhost:8001"),
		ProductServiceURL: getEnv("PRODUCT_SERVICE_URL", "http://localhost:8002"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		SagaLogPath:       getEnv("SAGA_LOG_PATH", "saga.db"),
	}

	var err error
	if cfg.LookupTimeout, err = getDuration("LOOKUP_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PaymentSuccessRate, err = getFloat("PAYMENT_SUCCESS_RATE", 0.9); err != nil {
		return Config{}, err
	}
	if cfg.PaymentSuccessRate < 0 || cfg.PaymentSuccessRate > 1 {
		return Config{}, fmt.Errorf("config: PAYMENT_SUCCESS_RATE must be in [0, 1], got %v", cfg.PaymentSuccessRate)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
