// Package config loads mcpcall settings from defaults, an optional YAML
// file, MCPCALL_* environment variables and command-line flags, in that
// order of increasing precedence. It is built on viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MCPCALL_SERVER_URL.
const EnvPrefix = "MCPCALL"

// Transport and id strategy names.
const (
	TransportHTTP      = "http"
	TransportWebSocket = "ws"

	IDFixed   = "fixed"
	IDCounter = "counter"
	IDUUID    = "uuid"
)

// Config is the resolved configuration.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Client    Client    `mapstructure:"client"`
	Log       Log       `mapstructure:"log"`
	RateLimit RateLimit `mapstructure:"rate_limit"`
}

type Server struct {
	URL       string            `mapstructure:"url"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	Transport string            `mapstructure:"transport"`
	Headers   map[string]string `mapstructure:"headers"`
}

type Client struct {
	ID       string `mapstructure:"id"`
	StrictID bool   `mapstructure:"strict_id"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// RateLimit throttles outgoing calls. A zero Rate disables it.
type RateLimit struct {
	Rate     int           `mapstructure:"rate"`
	Burst    int           `mapstructure:"burst"`
	Interval time.Duration `mapstructure:"interval"`
}

// New returns a viper instance with defaults and environment overrides set up.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.url", "http://localhost:8000/mcp")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.transport", TransportHTTP)
	v.SetDefault("server.headers", map[string]string{})
	v.SetDefault("client.id", IDFixed)
	v.SetDefault("client.strict_id", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("rate_limit.rate", 0)
	v.SetDefault("rate_limit.burst", 0)
	v.SetDefault("rate_limit.interval", "1s")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file at path, or mcpcall.yaml from the working
// directory or $HOME/.config/mcpcall when path is empty, and returns the
// validated result. A missing default file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mcpcall")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/mcpcall")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url: %w", err)
	}

	switch c.Server.Transport {
	case TransportHTTP:
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("server.url: %q is not an http(s) url", c.Server.URL)
		}
	case TransportWebSocket:
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("server.url: %q is not a ws(s) url", c.Server.URL)
		}
	default:
		return fmt.Errorf("server.transport: unknown transport %q", c.Server.Transport)
	}

	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout: must not be negative")
	}

	switch c.Client.ID {
	case IDFixed, IDCounter, IDUUID:
	default:
		return fmt.Errorf("client.id: unknown id strategy %q", c.Client.ID)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}

	if c.RateLimit.Rate < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit: rate and burst must not be negative")
	}
	if c.RateLimit.Rate > 0 && c.RateLimit.Interval <= 0 {
		return fmt.Errorf("rate_limit.interval: must be positive")
	}

	return nil
}
