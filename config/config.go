// Package config holds the typed application configuration read through viper.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/aqlanhadi/kwgn-sms/reconcile"
	"github.com/spf13/viper"
)

// DefaultYAML is used when no config file is found.
//
//go:embed default.yaml
var DefaultYAML string

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the application configuration
type Config struct {
	LogLevel        string            `mapstructure:"log_level"`
	DuplicateWindow time.Duration     `mapstructure:"duplicate_window"`
	Compile         CompileConfig     `mapstructure:"compile"`
	Store           StoreConfig       `mapstructure:"store"`
	Server          ServerConfig      `mapstructure:"server"`
	Accounts        []common.Account  `mapstructure:"accounts"`
	Categories      []common.Category `mapstructure:"categories"`
}

type CompileConfig struct {
	Workers int `mapstructure:"workers"`
}

// StoreConfig selects the persistence backend. Path is the directory for the
// file driver and the database file for sqlite.
type StoreConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// SetDefaults registers the fallbacks for keys a config file may omit.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("duplicate_window", reconcile.DefaultWindow.String())
	v.SetDefault("compile.workers", 1)
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.path", "./data")
	v.SetDefault("server.port", "8080")
}

// Load unmarshals the configuration held by v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Store.DSN == "" {
		cfg.Store.DSN = os.Getenv("DATABASE_URL")
	}
	if cfg.Compile.Workers < 1 {
		cfg.Compile.Workers = 1
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn or DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.DuplicateWindow < 0 {
		return fmt.Errorf("duplicate_window must not be negative, got %s", c.DuplicateWindow)
	}

	seen := map[string]bool{}
	for i, account := range c.Accounts {
		if account.ID == "" {
			return fmt.Errorf("accounts[%d]: id is required", i)
		}
		if seen[account.ID] {
			return fmt.Errorf("accounts[%d]: duplicate id %q", i, account.ID)
		}
		seen[account.ID] = true
	}
	return nil
}
