// Package shop assembles the storefront bot: configuration, bootstrap
// wiring and the Telegram run options.
package shop

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/zhukata/shopbot/core/config"
	coredatabase "github.com/zhukata/shopbot/core/database"
)

// Session store backends.
const (
	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

// PaymentConfig configures the Telegram payments provider.
type PaymentConfig struct {
	ProviderToken string `yaml:"provider_token" envconfig:"PAYMENT_PROVIDER_TOKEN"`
	Currency      string `yaml:"currency" envconfig:"PAYMENT_CURRENCY"`
}

// SessionsConfig selects where checkout conversations are kept.
type SessionsConfig struct {
	Backend    string `yaml:"backend" envconfig:"SESSIONS_BACKEND"`
	RedisAddr  string `yaml:"redis_addr" envconfig:"SESSIONS_REDIS_ADDR"`
	RedisDB    int    `yaml:"redis_db" envconfig:"SESSIONS_REDIS_DB"`
	RedisPass  string `yaml:"redis_password" envconfig:"SESSIONS_REDIS_PASSWORD"`
	TTLMinutes int    `yaml:"ttl_minutes" envconfig:"SESSIONS_TTL_MINUTES"`
}

// TTL returns the configured session lifetime, 0 meaning backend default.
func (s SessionsConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// ExportConfig points at the orders spreadsheet.
type ExportConfig struct {
	Path string `yaml:"path" envconfig:"EXPORT_PATH"`
}

// Config is the full application configuration: the reusable core plus
// the shop-specific sections.
type Config struct {
	Core     coreconfig.Config   `yaml:"core"`
	Database coredatabase.Config `yaml:"database"`
	Payment  PaymentConfig       `yaml:"payment"`
	Sessions SessionsConfig      `yaml:"sessions"`
	Export   ExportConfig        `yaml:"export"`
	SeedFile string              `yaml:"seed_file" envconfig:"SEED_FILE"`
	FAQFile  string              `yaml:"faq_file" envconfig:"FAQ_FILE"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfig reads the YAML file, applies environment overrides and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Payment.ProviderToken) == "" {
		return fmt.Errorf("payment.provider_token is required")
	}
	cfg.Payment.Currency = strings.ToUpper(strings.TrimSpace(cfg.Payment.Currency))
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "USD"
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Sessions.Backend))
	if backend == "" {
		backend = SessionsMemory
	}
	switch backend {
	case SessionsMemory:
	case SessionsRedis:
		if strings.TrimSpace(cfg.Sessions.RedisAddr) == "" {
			return fmt.Errorf("sessions.redis_addr is required when sessions.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid sessions.backend %q; allowed: memory, redis", cfg.Sessions.Backend)
	}
	cfg.Sessions.Backend = backend

	if strings.TrimSpace(cfg.Export.Path) == "" {
		cfg.Export.Path = "orders.xlsx"
	}
	return nil
}
