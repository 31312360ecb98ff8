package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/learnportal/internal/flagx"
	"github.com/dmitrijs2005/learnportal/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Absent fields keep their
// earlier value.
type JsonConfig struct {
	APIBaseURL         string         `json:"api_base_url"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	TokenStore         string         `json:"token_store"`
	DatabasePath       string         `json:"database_path"`
	KeyringService     string         `json:"keyring_service"`
	OAuthCallbackAddr  string         `json:"oauth_callback_addr"`
	LogLevel           string         `json:"log_level"`
	ResendCooldown     timex.Duration `json:"resend_cooldown"`
	ResetRedirectDelay timex.Duration `json:"reset_redirect_delay"`
	MeRetries          *uint64        `json:"me_retries"`
	RetryBase          timex.Duration `json:"retry_base"`
}

// parseJSON overlays cfg with the file named by -c or -config, if any.
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

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.TokenStore, jc.TokenStore)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.KeyringService, jc.KeyringService)
	setString(&cfg.OAuthCallbackAddr, jc.OAuthCallbackAddr)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ResendCooldown.Duration != 0 {
		cfg.ResendCooldown = jc.ResendCooldown.Duration
	}
	if jc.ResetRedirectDelay.Duration != 0 {
		cfg.ResetRedirectDelay = jc.ResetRedirectDelay.Duration
	}
	if jc.MeRetries != nil {
		cfg.MeRetries = *jc.MeRetries
	}
	if jc.RetryBase.Duration != 0 {
		cfg.RetryBase = jc.RetryBase.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
