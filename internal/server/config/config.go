// Package config handles configuration for the development backend,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LEARNPORTAL_SERVER_"

// Config holds runtime settings for the development backend.
//
// Fields:
//   - ListenAddr: bind address of the HTTP API.
//   - SecretKey: HMAC secret for signing tokens (HS256). Do not use the default outside development.
//   - TokenTTL: bearer token lifetime.
//   - OTPTTL: lifetime of an email verification code.
//   - ResetTokenTTL: lifetime of a password reset token.
//   - ResendCooldown: minimum spacing between verification code resends.
type Config struct {
	ListenAddr     string        `env:"LISTEN_ADDR" validate:"required,tcp_addr"`
	SecretKey      string        `env:"SECRET_KEY" validate:"required,min=8"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" validate:"gt=0"`
	OTPTTL         time.Duration `env:"OTP_TTL" validate:"gt=0"`
	ResetTokenTTL  time.Duration `env:"RESET_TOKEN_TTL" validate:"gt=0"`
	ResendCooldown time.Duration `env:"RESEND_COOLDOWN" validate:"gte=0"`
	LogLevel       string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// LoadDefaults populates c with development defaults.
// NOTE: the secret is insecure and must be overridden anywhere but locally.
func (c *Config) LoadDefaults() {
	c.ListenAddr = "127.0.0.1:8080"
	c.SecretKey = "dev-secret-key"
	c.TokenTTL = 24 * time.Hour
	c.OTPTTL = 10 * time.Minute
	c.ResetTokenTTL = time.Hour
	c.ResendCooldown = 60 * time.Second
	c.LogLevel = "info"
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load applies defaults, the JSON file named by -c/-config,
// LEARNPORTAL_SERVER_* environment variables and flags, in that order.
func Load(args []string) (*Config, error) {
	return load(args, nil)
}

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
