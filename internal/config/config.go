package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/gharmitra/societyledger/internal/ledger"
)

// Config is the top-level societyledger.yaml configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Accounting AccountingConfig `yaml:"accounting"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AccountingConfig holds engine-wide accounting knobs. Tolerance is the
// single balance-check tolerance in currency units, e.g. "0.01".
type AccountingConfig struct {
	Tolerance string `yaml:"tolerance"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server:     ServerConfig{Addr: ":8888"},
		Database:   DatabaseConfig{Path: "societyledger.db"},
		Accounting: AccountingConfig{Tolerance: "0.01"},
	}
}

// Load reads a YAML config file, falling back to defaults for a missing
// file and for any field left empty.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	def := Default()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = def.Database.Path
	}
	if cfg.Accounting.Tolerance == "" {
		cfg.Accounting.Tolerance = def.Accounting.Tolerance
	}
	return cfg, nil
}

// Tolerance parses the configured balance tolerance.
func (c Config) Tolerance() (ledger.Tolerance, error) {
	d, err := decimal.NewFromString(c.Accounting.Tolerance)
	if err != nil {
		return ledger.Tolerance{}, fmt.Errorf("invalid tolerance %q: %w", c.Accounting.Tolerance, err)
	}
	return ledger.NewTolerance(d), nil
}
