package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/learnportal/internal/flagx"
)

var knownFlags = []string{"-a", "-s", "-d", "-l", "-k", "-timeout", "-retries", "-retry-base"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string             API base URL
//	-s string             token store: sqlite or keyring
//	-d string             client database path (sqlite token store)
//	-k string             keyring service name (keyring token store)
//	-l string             log level
//	-timeout duration     request timeout, e.g. 5s
//	-retries uint         retries of the session check on transport errors
//	-retry-base duration  first backoff between those retries
//
// Other arguments are filtered out with flagx.FilterArgs, so -c/-config and
// flags of other components do not interfere.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("learnportal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.TokenStore, "s", cfg.TokenStore, "token store (sqlite|keyring)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "client database path")
	fs.StringVar(&cfg.KeyringService, "k", cfg.KeyringService, "keyring service name")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "request timeout")
	fs.Uint64Var(&cfg.MeRetries, "retries", cfg.MeRetries, "session check retries")
	fs.DurationVar(&cfg.RetryBase, "retry-base", cfg.RetryBase, "session check backoff base")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
