package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Token store backends.
const (
	TokenStoreSQLite  = "sqlite"
	TokenStoreKeyring = "keyring"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LEARNPORTAL_"

// Config holds runtime settings for the portal terminal client.
//
// Units: all durations are time.Duration; JSON and environment accept
// strings like "3s".
type Config struct {
	APIBaseURL         string        `env:"API_BASE_URL" validate:"required,url"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" validate:"gt=0"`
	TokenStore         string        `env:"TOKEN_STORE" validate:"oneof=sqlite keyring"`
	DatabasePath       string        `env:"DATABASE_PATH" validate:"required_if=TokenStore sqlite"`
	KeyringService     string        `env:"KEYRING_SERVICE" validate:"required_if=TokenStore keyring"`
	OAuthCallbackAddr  string        `env:"OAUTH_CALLBACK_ADDR" validate:"required,tcp_addr"`
	LogLevel           string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	ResendCooldown     time.Duration `env:"RESEND_COOLDOWN" validate:"gt=0"`
	ResetRedirectDelay time.Duration `env:"RESET_REDIRECT_DELAY" validate:"gte=0"`
	MeRetries          uint64        `env:"ME_RETRIES" validate:"lte=10"`
	RetryBase          time.Duration `env:"RETRY_BASE" validate:"gt=0"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 10 * time.Second
	c.TokenStore = TokenStoreSQLite
	c.DatabasePath = "learnportal.db"
	c.KeyringService = "learnportal"
	c.OAuthCallbackAddr = "127.0.0.1:0"
	c.LogLevel = "info"
	c.ResendCooldown = 60 * time.Second
	c.ResetRedirectDelay = 3 * time.Second
	c.MeRetries = 2
	c.RetryBase = 200 * time.Millisecond
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, then the JSON file named by -c/-config,
// then LEARNPORTAL_* environment variables, then flags. Later sources take
// precedence over earlier ones.
func Load(args []string) (*Config, error) {
	return load(args, nil)
}

// load is Load with an explicit environment; nil means the process one.
func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args; it panics on error.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
