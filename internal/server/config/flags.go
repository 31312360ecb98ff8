package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/learnportal/internal/flagx"
)

var knownFlags = []string{"-a", "-s", "-t", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string    listen address (e.g. "127.0.0.1:8080")
//	-s string    token signing secret
//	-t duration  token lifetime, e.g. 12h
//	-l string    log level
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("learnportal-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "address and port to run server")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.DurationVar(&cfg.TokenTTL, "t", cfg.TokenTTL, "token lifetime")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
