// Package config loads the simulator configuration from a YAML or JSON
// file, with an optional .env overlay for deploy-time overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete simulator configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig seeds the default paper trading session.
type AccountConfig struct {
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
}

// ServerConfig controls the HTTP API. DataDir is the directory CSV bar
// datasets are served from; empty disables dataset-path backtests.
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
	DataDir        string   `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
}

// StrategyConfig holds the default backtest strategy parameters.
type StrategyConfig struct {
	RSIPeriod     int     `json:"rsi_period" yaml:"rsi_period"`
	RSIOversold   float64 `json:"rsi_oversold" yaml:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought" yaml:"rsi_overbought"`
	SMAFast       int     `json:"sma_fast" yaml:"sma_fast"`
	SMASlow       int     `json:"sma_slow" yaml:"sma_slow"`
	RiskPercent   float64 `json:"risk_percent" yaml:"risk_percent"`
}

// JournalConfig selects where realized trades are persisted.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON, tried in
// that order), then applies .env / environment overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load returns defaults plus environment overrides when no config file is
// given.
func Load() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// applyEnv overlays .env (if present) and process environment variables.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("STOCKSIM_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("STOCKSIM_INITIAL_CASH"); v != "" {
		if cash, err := strconv.ParseFloat(v, 64); err == nil && cash > 0 {
			c.Account.InitialCash = cash
		}
	}
	if v := os.Getenv("STOCKSIM_DATA_DIR"); v != "" {
		c.Server.DataDir = v
	}
	if v := os.Getenv("STOCKSIM_JOURNAL_DB"); v != "" {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = v
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.Account.InitialCash <= 0 {
		return fmt.Errorf("account.initial_cash must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Strategy.RSIOversold >= c.Strategy.RSIOverbought {
		return fmt.Errorf("strategy.rsi_oversold must be below rsi_overbought")
	}
	if c.Strategy.SMAFast >= c.Strategy.SMASlow {
		return fmt.Errorf("strategy.sma_fast must be below sma_slow")
	}
	if c.Strategy.RiskPercent <= 0 || c.Strategy.RiskPercent > 100 {
		return fmt.Errorf("strategy.risk_percent must be between 0 and 100")
	}
	switch strings.ToLower(c.Journal.Type) {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// SaveToFile writes the configuration as YAML or JSON based on extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCash: 100000,
		},
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		Strategy: StrategyConfig{
			RSIPeriod:     14,
			RSIOversold:   30,
			RSIOverbought: 70,
			SMAFast:       50,
			SMASlow:       200,
			RiskPercent:   2.0,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
