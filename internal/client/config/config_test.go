package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8080/api", c.APIBaseURL)
	assert.Equal(t, TokenStoreSQLite, c.TokenStore)
	assert.Equal(t, 60*time.Second, c.ResendCooldown)
	assert.Equal(t, 3*time.Second, c.ResetRedirectDelay)
	assert.Equal(t, uint64(2), c.MeRetries)
	assert.Equal(t, 200*time.Millisecond, c.RetryBase)
	require.NoError(t, c.Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := load(nil, map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"api_base_url":         "http://json.example:1/api",
		"token_store":          "keyring",
		"log_level":            "debug",
		"request_timeout":      "7s",
		"reset_redirect_delay": 2000000000,
		"me_retries":           5,
		"retry_base":           "1s",
	})
	environ := map[string]string{
		"LEARNPORTAL_LOG_LEVEL":       "warn",
		"LEARNPORTAL_RESEND_COOLDOWN": "30s",
		"LEARNPORTAL_API_BASE_URL":    "http://env.example:2/api",
		"LEARNPORTAL_RETRY_BASE":      "50ms",
	}
	args := []string{"-c", path, "-a", "http://flag.example:3/api", "-retries", "1", "-unrelated", "x"}

	cfg, err := load(args, environ)
	require.NoError(t, err)

	want := defaults()
	want.APIBaseURL = "http://flag.example:3/api"
	want.TokenStore = TokenStoreKeyring
	want.LogLevel = "warn"
	want.RequestTimeout = 7 * time.Second
	want.ResendCooldown = 30 * time.Second
	want.ResetRedirectDelay = 2 * time.Second
	want.MeRetries = 1
	want.RetryBase = 50 * time.Millisecond
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := load([]string{"-s", "keyring", "-k", "svc", "-l", "error", "-timeout", "3s", "-d=other.db"}, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, TokenStoreKeyring, cfg.TokenStore)
	assert.Equal(t, "svc", cfg.KeyringService)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "other.db", cfg.DatabasePath)
}

func TestLoad_SessionCheckRetries(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"me_retries": 0})
	cfg, err := load([]string{"-c", path}, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cfg.MeRetries)

	cfg, err = load(nil, map[string]string{"LEARNPORTAL_ME_RETRIES": "4"})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), cfg.MeRetries)

	cfg, err = load([]string{"-retries=3", "-retry-base", "10ms"}, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), cfg.MeRetries)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryBase)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		environ map[string]string
	}{
		{"bad flag duration", []string{"-timeout", "abc"}, map[string]string{}},
		{"bad env duration", nil, map[string]string{"LEARNPORTAL_REQUEST_TIMEOUT": "soon"}},
		{"unknown store", []string{"-s", "floppy"}, map[string]string{}},
		{"bad log level", []string{"-l", "loud"}, map[string]string{}},
		{"missing file", []string{"-c", "/does/not/exist.json"}, map[string]string{}},
		{"bad url", []string{"-a", "not a url"}, map[string]string{}},
		{"too many retries", []string{"-retries", "50"}, map[string]string{}},
		{"zero retry base", nil, map[string]string{"LEARNPORTAL_RETRY_BASE": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.args, tt.environ)
			require.Error(t, err)
		})
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := load([]string{"-config", path}, map[string]string{})
	require.Error(t, err)
}

func TestLoadConfig_PanicsOnError(t *testing.T) {
	saved := os.Args
	t.Cleanup(func() { os.Args = saved })

	os.Args = []string{"cmd", "-s", "floppy"}
	require.Panics(t, func() { LoadConfig() })
}
