package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/learnportal/internal/flagx"
	"github.com/dmitrijs2005/learnportal/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept "1h" or
// integer nanoseconds.
type JsonConfig struct {
	ListenAddr     string         `json:"listen_addr"`
	SecretKey      string         `json:"secret_key"`
	TokenTTL       timex.Duration `json:"token_ttl"`
	OTPTTL         timex.Duration `json:"otp_ttl"`
	ResetTokenTTL  timex.Duration `json:"reset_token_ttl"`
	ResendCooldown timex.Duration `json:"resend_cooldown"`
	LogLevel       string         `json:"log_level"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if jc.ListenAddr != "" {
		cfg.ListenAddr = jc.ListenAddr
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	setDuration(&cfg.TokenTTL, jc.TokenTTL)
	setDuration(&cfg.OTPTTL, jc.OTPTTL)
	setDuration(&cfg.ResetTokenTTL, jc.ResetTokenTTL)
	setDuration(&cfg.ResendCooldown, jc.ResendCooldown)
	return nil
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
