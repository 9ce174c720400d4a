// Package config loads the optional evalgate.yaml workspace configuration.
// Everything in it has a flag or environment equivalent; the file only exists
// so CI pipelines can check shared settings into the repository.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is probed when no --config flag is given.
const DefaultPath = "evalgate.yaml"

type Config struct {
	DefaultEnvironment string   `yaml:"default_environment"`
	Strict             bool     `yaml:"strict"`
	LogLevel           string   `yaml:"log_level"`
	DB                 DBConfig `yaml:"db"`
}

type DBConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Load reads and validates a config file. ${VAR} references are expanded from
// the environment so DSNs can carry credentials without committing them.
func Load(path string) (Config, error) {
	// #nosec G304 -- path is operator-provided config path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadOptional is Load, except a missing file yields the zero config. Any
// other read or parse failure is still an error.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil && os.IsNotExist(err) {
		return Config{}, nil
	}
	return cfg, err
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("db.driver must be sqlite or postgres, got %q", c.DB.Driver)
	}
	if c.DB.Driver != "" && c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required when db.driver is set")
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}

	return nil
}
