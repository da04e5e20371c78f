// Package config loads portal settings from defaults, an optional YAML file,
// PORTAL_* environment variables and command-line flags, in increasing priority.
package config

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. PORTAL_SERVER_ADDR
const EnvPrefix = "PORTAL"

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Latency LatencyConfig `mapstructure:"latency" yaml:"latency"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type SessionConfig struct {
	// Secret signs the session cookie. A random one is generated when empty,
	// so sessions do not survive a restart.
	Secret      string `mapstructure:"secret" yaml:"secret"`
	CSRFKey     string `mapstructure:"csrf_key" yaml:"csrf_key"`
	Secure      bool   `mapstructure:"secure" yaml:"secure"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // seconds
	StaffPrefix string `mapstructure:"staff_prefix" yaml:"staff_prefix"`
}

type CatalogConfig struct {
	Path      string `mapstructure:"path" yaml:"path"` // empty serves the built-in fixtures
	Watch     bool   `mapstructure:"watch" yaml:"watch"`
	CacheSize int    `mapstructure:"cache_size" yaml:"cache_size"`
}

// LatencyConfig simulates backend round trips
type LatencyConfig struct {
	Login   time.Duration `mapstructure:"login" yaml:"login"`
	Search  time.Duration `mapstructure:"search" yaml:"search"`
	Reserve time.Duration `mapstructure:"reserve" yaml:"reserve"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8888",
			ShutdownTimeout: 5 * time.Second,
		},
		Session: SessionConfig{
			MaxAge:      7 * 24 * 60 * 60,
			StaffPrefix: "LIB",
		},
		Catalog: CatalogConfig{
			CacheSize: 256,
		},
		Latency: LatencyConfig{
			Login:   time.Second,
			Search:  500 * time.Millisecond,
			Reserve: time.Second,
		},
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 bytes")
	}
	if c.Session.CSRFKey != "" && len(c.Session.CSRFKey) != 32 {
		return fmt.Errorf("csrf key must be exactly 32 bytes")
	}
	if c.Session.MaxAge < 0 {
		return fmt.Errorf("session max age cannot be negative")
	}
	if strings.TrimSpace(c.Session.StaffPrefix) == "" {
		return fmt.Errorf("staff prefix cannot be empty")
	}
	if c.Catalog.Watch && c.Catalog.Path == "" {
		return fmt.Errorf("catalog watch requires a catalog path")
	}
	if c.Catalog.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.Latency.Login < 0 || c.Latency.Search < 0 || c.Latency.Reserve < 0 {
		return fmt.Errorf("latency cannot be negative")
	}
	return nil
}

// SessionKeys returns the cookie signing key and the CSRF key, generating
// whichever is not configured.
func (c *Config) SessionKeys() (secret, csrfKey []byte, err error) {
	secret = []byte(c.Session.Secret)
	if len(secret) == 0 {
		slog.Warn("No session secret configured, generating one; sessions end on restart")
		if secret, err = randomKey(64); err != nil {
			return nil, nil, err
		}
	}
	csrfKey = []byte(c.Session.CSRFKey)
	if len(csrfKey) == 0 {
		if csrfKey, err = randomKey(32); err != nil {
			return nil, nil, err
		}
	}
	return secret, csrfKey, nil
}

func randomKey(n int) ([]byte, error) {
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// SetDefaults registers every key so environment variables can override it.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("session.secret", d.Session.Secret)
	v.SetDefault("session.csrf_key", d.Session.CSRFKey)
	v.SetDefault("session.secure", d.Session.Secure)
	v.SetDefault("session.max_age", d.Session.MaxAge)
	v.SetDefault("session.staff_prefix", d.Session.StaffPrefix)
	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.watch", d.Catalog.Watch)
	v.SetDefault("catalog.cache_size", d.Catalog.CacheSize)
	v.SetDefault("latency.login", d.Latency.Login)
	v.SetDefault("latency.search", d.Latency.Search)
	v.SetDefault("latency.reserve", d.Latency.Reserve)
}

// Load reads configuration into a Config. path may be empty.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		slog.Info("Using config file", "path", v.ConfigFileUsed())
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
