// Package config loads runtime configuration for the portal terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables prefixed with LEARNPORTAL_, e.g.
//     LEARNPORTAL_API_BASE_URL or LEARNPORTAL_TOKEN_STORE.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080/api",
//	  "request_timeout": "10s",
//	  "token_store": "sqlite",
//	  "database_path": "learnportal.db",
//	  "keyring_service": "learnportal",
//	  "oauth_callback_addr": "127.0.0.1:0",
//	  "log_level": "info",
//	  "resend_cooldown": "60s",
//	  "reset_redirect_delay": "3s"
//	}
//
// The result is validated before it is returned.
package config
