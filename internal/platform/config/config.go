// Package config loads process configuration from the environment with
// command-line flag overrides.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is shared by the CLI and the HTTP server.
type Config struct {
	LogMode string `env:"LOG_MODE" envDefault:"development"`

	GatewayBaseURL string        `env:"COURSEGEN_GATEWAY_BASE_URL" envDefault:"http://localhost:3000"`
	GatewayToken   string        `env:"COURSEGEN_GATEWAY_TOKEN"`
	GatewayTimeout time.Duration `env:"COURSEGEN_GATEWAY_TIMEOUT" envDefault:"120s"`
	MaxAttempts    int           `env:"COURSEGEN_MAX_ATTEMPTS" envDefault:"3"`
	StatusTTL      time.Duration `env:"COURSEGEN_STATUS_TTL" envDefault:"60s"`

	Thumbnails bool `env:"COURSEGEN_THUMBNAILS" envDefault:"true"`
	LogUsage   bool `env:"COURSEGEN_LOG_USAGE" envDefault:"false"`

	HTTPAddr    string   `env:"COURSEGEN_HTTP_ADDR" envDefault:":8080"`
	CORSOrigins []string `env:"COURSEGEN_CORS_ORIGINS" envSeparator:","`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"false"`
	MetricsAddr    string `env:"METRICS_ADDR"`

	RedisAddr    string `env:"REDIS_ADDR"`
	RedisChannel string `env:"REDIS_CHANNEL" envDefault:"coursegen_sse"`

	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"coursegen"`
	Version     string `env:"COURSEGEN_VERSION" envDefault:"dev"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseConfig reads the environment, then lets flags registered on fs
// override it. Callers may register their own flags on fs beforehand.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.GatewayBaseURL, "gateway-url", cfg.GatewayBaseURL, "Base URL of the AI gateway backend")
	fs.StringVar(&cfg.GatewayToken, "token", cfg.GatewayToken, "Bearer token sent to the gateway")
	fs.DurationVar(&cfg.GatewayTimeout, "timeout", cfg.GatewayTimeout, "Per-request gateway timeout")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Attempts per gateway call (initial + retries)")
	fs.BoolVar(&cfg.Thumbnails, "thumbnails", cfg.Thumbnails, "Generate module and lesson thumbnails")
	fs.BoolVar(&cfg.LogUsage, "log-usage", cfg.LogUsage, "Send usage records to the accounting endpoint")
	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.GatewayBaseURL = strings.TrimRight(strings.TrimSpace(c.GatewayBaseURL), "/")
	if c.GatewayBaseURL == "" {
		return errors.New("gateway base url is required")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.StatusTTL < 0 {
		return fmt.Errorf("status ttl must not be negative")
	}
	return nil
}
