// Package config loads opsledger settings from defaults, an optional YAML
// file and OPSLEDGER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. OPSLEDGER_STORE_PATH.
const EnvPrefix = "OPSLEDGER"

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the complete runtime configuration.
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Import ImportConfig `mapstructure:"import"`
	Log    LogConfig    `mapstructure:"log"`
}

// StoreConfig selects and locates the operation record store.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"` // sqlite file
	DSN    string `mapstructure:"dsn"`  // postgres connection string
}

// ImportConfig tunes the job importer.
type ImportConfig struct {
	SeedSourceQuantities bool `mapstructure:"seed_source_quantities"`
	WorkOrderPrefixLen   int  `mapstructure:"work_order_prefix_len"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Store:  StoreConfig{Driver: DriverSQLite, Path: "opsledger.db"},
		Import: ImportConfig{WorkOrderPrefixLen: 6},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads configuration. An empty path skips the config file; a path
// that cannot be read is an error. The result is validated.
func Load(path string) (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("import.seed_source_quantities", d.Import.SeedSourceQuantities)
	v.SetDefault("import.work_order_prefix_len", d.Import.WorkOrderPrefixLen)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of sqlite, postgres", c.Store.Driver))
	}

	if c.Import.WorkOrderPrefixLen < 1 {
		errs = append(errs, fmt.Errorf("import.work_order_prefix_len must be positive, got %d", c.Import.WorkOrderPrefixLen))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}

	return errors.Join(errs...)
}
