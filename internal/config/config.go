// Package config loads affectgrid settings with viper.
//
// Precedence, highest first:
//  1. CLI flags bound with BindFlags
//  2. Environment variables (AFFECTGRID_SERVER_PORT, ...)
//  3. Config file (YAML)
//  4. Defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/affectgrid/internal/grid"
	"github.com/roach88/affectgrid/internal/semlog"
	"github.com/roach88/affectgrid/internal/server"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AFFECTGRID"

// Config is the effective configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server" json:"server"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store" json:"store"`
	Semlog  SemlogConfig  `mapstructure:"semlog" yaml:"semlog" json:"semlog"`
	Ingest  IngestConfig  `mapstructure:"ingest" yaml:"ingest" json:"ingest"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host" json:"host"`
	Port            int           `mapstructure:"port" yaml:"port" json:"port"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	CookieName      string        `mapstructure:"cookie_name" yaml:"cookie_name" json:"cookie_name"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

type SemlogConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" json:"path"`
	Format  string `mapstructure:"format" yaml:"format" json:"format"`
}

type IngestConfig struct {
	RangePolicy string  `mapstructure:"range_policy" yaml:"range_policy" json:"range_policy"`
	RateLimit   float64 `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	Burst       int     `mapstructure:"burst" yaml:"burst" json:"burst"`
}

type MetricsConfig struct {
	// Addr of the Prometheus listener; empty disables it.
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	s := server.DefaultSettings()
	return Config{
		Server: ServerConfig{
			Host:            s.Host,
			Port:            s.Port,
			MaxBodyBytes:    s.MaxBodyBytes,
			ReadTimeout:     s.ReadTimeout,
			WriteTimeout:    s.WriteTimeout,
			IdleTimeout:     s.IdleTimeout,
			ShutdownTimeout: s.ShutdownTimeout,
			CookieName:      s.CookieName,
		},
		Store: StoreConfig{Path: "affectgrid.db"},
		Semlog: SemlogConfig{
			Enabled: true,
			Path:    "grid_data.ttl",
			Format:  string(semlog.FormatTurtle),
		},
		Ingest: IngestConfig{RangePolicy: string(grid.RangeAccept)},
	}
}

// New returns a viper instance with defaults and environment overrides
// registered. Every key has a default so AutomaticEnv sees all of them.
func New() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.cookie_name", d.Server.CookieName)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("semlog.enabled", d.Semlog.Enabled)
	v.SetDefault("semlog.path", d.Semlog.Path)
	v.SetDefault("semlog.format", d.Semlog.Format)
	v.SetDefault("ingest.range_policy", d.Ingest.RangePolicy)
	v.SetDefault("ingest.rate_limit", d.Ingest.RateLimit)
	v.SetDefault("ingest.burst", d.Ingest.Burst)
	v.SetDefault("metrics.addr", d.Metrics.Addr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadFile merges a YAML config file into v.
//
// With an explicit path the file must exist. Without one, affectgrid.yaml is
// searched in the working directory and $HOME/.affectgrid; not finding it is
// not an error. Returns the file used, or "".
func ReadFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("affectgrid")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".affectgrid"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// BindFlags binds config keys to flags of fs. Flags only override the file
// and environment when set explicitly.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("bind flag %q: no such flag", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range 0-65535", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive"))
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, fmt.Errorf("store.path is required"))
	}
	if c.Semlog.Enabled && strings.TrimSpace(c.Semlog.Path) == "" {
		errs = append(errs, fmt.Errorf("semlog.path is required when semlog.enabled"))
	}
	if _, err := semlog.ParseFormat(c.Semlog.Format); err != nil {
		errs = append(errs, fmt.Errorf("semlog.format: %w", err))
	}
	if _, err := grid.ParseRangePolicy(c.Ingest.RangePolicy); err != nil {
		errs = append(errs, fmt.Errorf("ingest.range_policy: %w", err))
	}
	if c.Ingest.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("ingest.rate_limit must not be negative"))
	}
	if c.Ingest.Burst < 0 {
		errs = append(errs, fmt.Errorf("ingest.burst must not be negative"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ServerSettings converts the server and ingest sections.
func (c Config) ServerSettings() server.Settings {
	return server.Settings{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		MaxBodyBytes:    c.Server.MaxBodyBytes,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		IdleTimeout:     c.Server.IdleTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
		CookieName:      c.Server.CookieName,
		RateLimit:       c.Ingest.RateLimit,
		Burst:           c.Ingest.Burst,
	}
}

// RangePolicy returns the validated range policy.
func (c Config) RangePolicy() grid.RangePolicy {
	p, err := grid.ParseRangePolicy(c.Ingest.RangePolicy)
	if err != nil {
		return grid.RangeAccept
	}
	return p
}

// SemlogFormat returns the validated semantic log format.
func (c Config) SemlogFormat() semlog.Format {
	f, err := semlog.ParseFormat(c.Semlog.Format)
	if err != nil {
		return semlog.FormatTurtle
	}
	return f
}
