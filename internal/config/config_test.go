package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server address"},
		{"short secret", func(c *Config) { c.Session.Secret = "short" }, "session secret"},
		{"bad csrf key", func(c *Config) { c.Session.CSRFKey = "short" }, "csrf key"},
		{"blank prefix", func(c *Config) { c.Session.StaffPrefix = " " }, "staff prefix"},
		{"watch without path", func(c *Config) { c.Catalog.Watch = true }, "catalog watch"},
		{"zero cache", func(c *Config) { c.Catalog.CacheSize = 0 }, "cache size"},
		{"negative latency", func(c *Config) { c.Latency.Search = -time.Second }, "latency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal.yaml")
	content := `server:
  addr: ":9000"
catalog:
  path: ./books.yaml
latency:
  login: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("PORTAL_LATENCY_SEARCH", "0s")
	t.Setenv("PORTAL_SESSION_STAFF_PREFIX", "STAFF")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "./books.yaml", cfg.Catalog.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Latency.Login)
	assert.Equal(t, time.Duration(0), cfg.Latency.Search)
	assert.Equal(t, time.Second, cfg.Latency.Reserve)
	assert.Equal(t, "STAFF", cfg.Session.StaffPrefix)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to read config"))
}

func TestSessionKeys(t *testing.T) {
	cfg := DefaultConfig()
	secret, csrfKey, err := cfg.SessionKeys()
	require.NoError(t, err)
	assert.Len(t, secret, 64)
	assert.Len(t, csrfKey, 32)

	cfg.Session.Secret = strings.Repeat("s", 32)
	cfg.Session.CSRFKey = strings.Repeat("c", 32)
	secret, csrfKey, err = cfg.SessionKeys()
	require.NoError(t, err)
	assert.Equal(t, cfg.Session.Secret, string(secret))
	assert.Equal(t, cfg.Session.CSRFKey, string(csrfKey))
}
