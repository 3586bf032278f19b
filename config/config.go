// Package config loads the ldg configuration: an optional YAML file, then a
// .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the file.
const (
	EnvLogLevel       = "LEDGER_LOG_LEVEL"
	EnvHistoryDB      = "LEDGER_HISTORY_DB"
	EnvShowTotals     = "LEDGER_SHOW_TOTALS"
	EnvLegacyEntities = "LEDGER_LEGACY_ENTITIES"
	EnvOFXDedupe      = "LEDGER_OFX_DEDUPE"
)

// Config is the ldg configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
	Export  ExportConfig  `yaml:"export"`
	OFX     OFXConfig     `yaml:"ofx"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

type HistoryConfig struct {
	Path string `yaml:"path"` // import history database, empty disables it
}

type ExportConfig struct {
	ShowTotals     bool `yaml:"show_totals"`
	LegacyEntities bool `yaml:"legacy_entities"`
}

type OFXConfig struct {
	Dedupe bool `yaml:"dedupe"` // skip statement lines already imported
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "warn"},
		History: HistoryConfig{Path: DefaultHistoryPath()},
		OFX:     OFXConfig{Dedupe: true},
	}
}

// DefaultHistoryPath returns the history database in the user config
// directory, or an empty path when there is none.
func DefaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ldg", "history.db")
}

// Load reads the configuration file at path, a missing file is not an error.
// The .env file of the current directory and the environment override it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("cannot read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("cannot parse config %q: %w", path, err)
			}
		}
	}

	// a missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot load .env: %w", err)
	}
	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) overrideFromEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvHistoryDB); ok {
		c.History.Path = v
	}
	var errs []error
	for key, dst := range map[string]*bool{
		EnvShowTotals:     &c.Export.ShowTotals,
		EnvLegacyEntities: &c.Export.LegacyEntities,
		EnvOFXDedupe:      &c.OFX.Dedupe,
	} {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
			continue
		}
		*dst = b
	}
	return errors.Join(errs...)
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the configured zap level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}
