// Package config provides runtime configuration values for the service.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds configuration knobs for the HTTP server, storage and telemetry.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR,default=:8080"`
	TLSCertFile     string        `env:"TLS_CERT_FILE"`
	TLSKeyFile      string        `env:"TLS_KEY_FILE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`

	StoreDriver   string `env:"STORE_DRIVER,default=memory"`
	StoreCapacity int    `env:"STORE_CAPACITY,default=50"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPrefix   string `env:"REDIS_PREFIX,default=storefront"`

	OTelHost        string  `env:"OTEL_HOST"`
	OTelProbability float64 `env:"OTEL_SAMPLE_PROBABILITY,default=1"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=20"`
}

// Load reads an optional .env file and decodes the environment with defaults.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected driver has what it needs.
func (c Config) Validate() error {
	if c.StoreCapacity <= 0 {
		return fmt.Errorf("config: STORE_CAPACITY must be positive, got %d", c.StoreCapacity)
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the %s driver", c.StoreDriver)
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for the %s driver", c.StoreDriver)
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("config: TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if c.OTelProbability < 0 || c.OTelProbability > 1 {
		return fmt.Errorf("config: OTEL_SAMPLE_PROBABILITY must be within [0,1], got %v", c.OTelProbability)
	}
	return nil
}

// TLSEnabled reports whether the server should listen with TLS.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}
