package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/journal"
	"github.com/nWish8/Sandbox/market"
	"github.com/nWish8/Sandbox/risk"
	"github.com/nWish8/Sandbox/sim"
	"github.com/nWish8/Sandbox/strategies"
)

// Config represents one backtest: data, strategy, execution model and
// where to journal the result.
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
	Analytics AnalyticsConfig `json:"analytics" yaml:"analytics"`
	Strategy  StrategyConfig  `json:"strategy" yaml:"strategy"`
	Data      DataConfig      `json:"data" yaml:"data"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// ExecutionConfig describes how orders fill.
type ExecutionConfig struct {
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	SlippageBps    float64 `json:"slippage_bps,omitempty" yaml:"slippage_bps,omitempty"`
	SlippageFixed  float64 `json:"slippage_fixed,omitempty" yaml:"slippage_fixed,omitempty"`
	AllowShort     bool    `json:"allow_short" yaml:"allow_short"`
	LotSize        float64 `json:"lot_size,omitempty" yaml:"lot_size,omitempty"`
	LiquidateAtEnd bool    `json:"liquidate_at_end" yaml:"liquidate_at_end"`
	PositionSize   float64 `json:"position_size" yaml:"position_size"` // fraction of equity per entry
}

type AnalyticsConfig struct {
	PeriodsPerYear float64 `json:"periods_per_year,omitempty" yaml:"periods_per_year,omitempty"`
}

// StrategyConfig names a registered strategy and its parameters.
type StrategyConfig struct {
	Name   string            `json:"name" yaml:"name"`
	Params strategies.Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// DataConfig locates the bars. Format "synth" generates a random walk
// from Seed and Bars instead of reading Path.
type DataConfig struct {
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // csv, parquet or synth; empty infers from Path
	Symbol string `json:"symbol" yaml:"symbol"`
	Seed   int64  `json:"seed,omitempty" yaml:"seed,omitempty"`
	Bars   int    `json:"bars,omitempty" yaml:"bars,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgDir string `json:"org_dir,omitempty" yaml:"org_dir,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML, or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	cfg.Strategy.Params = nil

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
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

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Execution.CommissionRate < 0 || c.Execution.CommissionRate >= 1 {
		return fmt.Errorf("execution.commission_rate must be in [0, 1)")
	}
	if c.Execution.SlippageBps < 0 || c.Execution.SlippageFixed < 0 {
		return fmt.Errorf("execution slippage must be non-negative")
	}
	if c.Execution.SlippageBps > 0 && c.Execution.SlippageFixed > 0 {
		return fmt.Errorf("execution: set slippage_bps or slippage_fixed, not both")
	}
	if c.Execution.PositionSize <= 0 || c.Execution.PositionSize > 1 {
		return fmt.Errorf("execution.position_size must be between 0 and 1")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if _, ok := strategies.Get(c.Strategy.Name); !ok {
		return fmt.Errorf("unknown strategy: %s", c.Strategy.Name)
	}
	if c.Data.Symbol == "" {
		return fmt.Errorf("data.symbol is required")
	}
	switch c.Data.format() {
	case "csv", "parquet":
		if c.Data.Path == "" {
			return fmt.Errorf("data.path required for %s format", c.Data.format())
		}
	case "synth":
		if c.Data.Bars < 0 {
			return fmt.Errorf("data.bars must be non-negative")
		}
	default:
		return fmt.Errorf("data.format must be 'csv', 'parquet' or 'synth'")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.Dir == "" {
			return fmt.Errorf("journal dir required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	if _, err := c.Backtest(); err != nil {
		return err
	}
	return nil
}

// Backtest converts the account, execution and analytics sections into
// an engine config.
func (c *Config) Backtest() (backtest.Config, error) {
	var slip sim.Slippage
	switch {
	case c.Execution.SlippageBps > 0:
		slip = sim.BasisPoints(c.Execution.SlippageBps)
	case c.Execution.SlippageFixed > 0:
		slip = sim.FixedOffset(c.Execution.SlippageFixed)
	}

	bc := backtest.Config{
		InitialCash:    c.Account.Balance,
		CommissionRate: c.Execution.CommissionRate,
		Slippage:       slip,
		AllowShort:     c.Execution.AllowShort,
		LotSize:        c.Execution.LotSize,
		PeriodsPerYear: c.Analytics.PeriodsPerYear,
		LiquidateAtEnd: c.Execution.LiquidateAtEnd,
		DefaultSize:    risk.FractionOfEquity(c.Execution.PositionSize),
	}
	if err := bc.Validate(); err != nil {
		return backtest.Config{}, err
	}
	return bc, nil
}

// NewStrategy builds the configured strategy.
func (c *Config) NewStrategy() (backtest.Strategy, error) {
	return strategies.New(c.Strategy.Name, c.Strategy.Params)
}

func (d DataConfig) format() string {
	if d.Format != "" {
		return strings.ToLower(d.Format)
	}
	switch strings.ToLower(filepath.Ext(d.Path)) {
	case ".parquet":
		return "parquet"
	case "":
		if d.Path == "" {
			return "synth"
		}
	}
	return "csv"
}

// Load reads or generates the configured series.
func (d DataConfig) Load() (*market.Series, error) {
	switch d.format() {
	case "csv":
		return market.LoadCSV(d.Path, d.Symbol)
	case "parquet":
		return market.LoadParquet(d.Path, d.Symbol)
	case "synth":
		p := market.DefaultWalk()
		if d.Seed != 0 {
			p.Seed = d.Seed
		}
		if d.Bars > 0 {
			p.Bars = d.Bars
		}
		return market.RandomWalk(d.Symbol, p)
	}
	return nil, fmt.Errorf("unsupported data format %q", d.Format)
}

// Dataset describes the data source for the journal.
func (d DataConfig) Dataset() string {
	if d.format() == "synth" {
		seed := d.Seed
		if seed == 0 {
			seed = market.DefaultWalk().Seed
		}
		return fmt.Sprintf("synth:seed=%d", seed)
	}
	return d.Path
}

// Open opens the configured journal. It returns nil for type "none".
func (j JournalConfig) Open() (journal.Journal, error) {
	switch j.Type {
	case "", "none":
		return nil, nil
	case "csv":
		return journal.NewCSV(j.Dir)
	case "sqlite":
		if dir := filepath.Dir(j.DBPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return journal.NewSQLite(j.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", j.Type)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency: "USD",
			Balance:  10000,
		},
		Execution: ExecutionConfig{
			CommissionRate: 0.001,
			PositionSize:   0.95,
			LiquidateAtEnd: true,
		},
		Strategy: StrategyConfig{
			Name:   "sma-cross",
			Params: strategies.Params{"fast": 10, "slow": 30},
		},
		Data: DataConfig{
			Symbol: "BTCUSDT",
			Seed:   42,
			Bars:   1000,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
