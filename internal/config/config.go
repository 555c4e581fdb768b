// Package config holds server settings: defaults, an optional YAML file,
// then command line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maloquacious/roster/internal/logger"
	"github.com/maloquacious/roster/internal/store"
)

// Config captures application server configuration.
type Config struct {
	Port            int           `yaml:"port"`
	AdminPort       int           `yaml:"admin_port"`
	PublicDir       string        `yaml:"public_dir"`
	DBPath          string        `yaml:"db_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Port:            8080,
		AdminPort:       8383,
		PublicDir:       "public",
		DBPath:          store.DefaultDBFile,
		ShutdownTimeout: 15 * time.Second,
		LogLevel:        "info",
		LogFormat:       logger.FormatText,
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem with cfg.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.AdminPort < 1 || c.AdminPort > 65535 {
		errs = append(errs, fmt.Errorf("admin_port %d out of range", c.AdminPort))
	}
	if c.Port == c.AdminPort {
		errs = append(errs, fmt.Errorf("port and admin_port must differ"))
	}
	if c.PublicDir == "" {
		errs = append(errs, fmt.Errorf("public_dir is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, fmt.Errorf("db_path is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown_timeout must be positive"))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != logger.FormatText && c.LogFormat != logger.FormatJSON {
		errs = append(errs, fmt.Errorf("invalid log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
