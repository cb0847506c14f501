package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/journal"
	"github.com/nWish8/Sandbox/market"
	"github.com/nWish8/Sandbox/risk"
	"github.com/nWish8/Sandbox/sim"
	"github.com/nWish8/Sandbox/strategies"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "USD", cfg.Account.Currency)
	assert.Equal(t, 10000.0, cfg.Account.Balance)
	assert.Equal(t, 0.95, cfg.Execution.PositionSize)
	assert.Equal(t, "synth", cfg.Data.format())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing currency", func(c *Config) { c.Account.Currency = "" }, "account.currency is required"},
		{"negative balance", func(c *Config) { c.Account.Balance = -1000 }, "account.balance must be positive"},
		{"commission too high", func(c *Config) { c.Execution.CommissionRate = 1 }, "commission_rate"},
		{"both slippages", func(c *Config) {
			c.Execution.SlippageBps = 5
			c.Execution.SlippageFixed = 0.1
		}, "not both"},
		{"position size zero", func(c *Config) { c.Execution.PositionSize = 0 }, "position_size"},
		{"missing strategy", func(c *Config) { c.Strategy.Name = "" }, "strategy.name is required"},
		{"unknown strategy", func(c *Config) { c.Strategy.Name = "martingale" }, "unknown strategy"},
		{"missing symbol", func(c *Config) { c.Data.Symbol = "" }, "data.symbol is required"},
		{"csv without path", func(c *Config) { c.Data.Format = "csv" }, "data.path required"},
		{"bad format", func(c *Config) { c.Data.Format = "xlsx" }, "data.format"},
		{"csv journal without dir", func(c *Config) { c.Journal.Type = "csv" }, "journal dir required"},
		{"sqlite journal without path", func(c *Config) { c.Journal.Type = "sqlite" }, "journal db_path required"},
		{"bad journal", func(c *Config) { c.Journal.Type = "mongo" }, "journal.type"},
		{"negative periods", func(c *Config) { c.Analytics.PeriodsPerYear = -1 }, "periods per year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestBacktestConversion(t *testing.T) {
	cfg := Default()
	cfg.Execution.SlippageBps = 10
	cfg.Execution.AllowShort = true
	cfg.Execution.LotSize = 0.01
	cfg.Analytics.PeriodsPerYear = 365

	bc, err := cfg.Backtest()
	require.NoError(t, err)
	assert.Equal(t, 10000.0, bc.InitialCash)
	assert.Equal(t, 0.001, bc.CommissionRate)
	assert.Equal(t, sim.BasisPoints(10), bc.Slippage)
	assert.True(t, bc.AllowShort)
	assert.True(t, bc.LiquidateAtEnd)
	assert.Equal(t, 0.01, bc.LotSize)
	assert.Equal(t, 365.0, bc.PeriodsPerYear)
	assert.Equal(t, risk.FractionOfEquity(0.95), bc.DefaultSize)

	cfg.Execution.SlippageBps = 0
	cfg.Execution.SlippageFixed = 0.5
	bc, err = cfg.Backtest()
	require.NoError(t, err)
	assert.Equal(t, sim.FixedOffset(0.5), bc.Slippage)

	cfg.Execution.SlippageFixed = 0
	bc, err = cfg.Backtest()
	require.NoError(t, err)
	assert.Nil(t, bc.Slippage)

	cfg.Account.Balance = 0
	_, err = cfg.Backtest()
	assert.ErrorIs(t, err, backtest.ErrInvalidConfig)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"cfg.yaml", "cfg.yml", "cfg.json"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), name)

			cfg := Default()
			cfg.Strategy = StrategyConfig{Name: "rsi", Params: strategies.Params{"period": 10, "oversold": 25}}
			cfg.Journal = JournalConfig{Type: "sqlite", DBPath: "runs.db"}
			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialYAMLKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := `
strategy:
  name: macd
data:
  symbol: ETHUSDT
  bars: 300
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "macd", cfg.Strategy.Name)
	assert.Empty(t, cfg.Strategy.Params)
	assert.Equal(t, "ETHUSDT", cfg.Data.Symbol)
	assert.Equal(t, 300, cfg.Data.Bars)
	assert.Equal(t, 10000.0, cfg.Account.Balance)
	assert.Equal(t, 0.95, cfg.Execution.PositionSize)

	s, err := cfg.NewStrategy()
	require.NoError(t, err)
	assert.Equal(t, "macd(12,26,9)", s.Name())
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("account: [1, 2"), 0o644))
	_, err = LoadFromFile(bad)
	assert.ErrorContains(t, err, "parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("strategy:\n  name: nope\n"), 0o644))
	_, err = LoadFromFile(invalid)
	assert.ErrorContains(t, err, "invalid config")
}

func TestDataLoad(t *testing.T) {
	t.Parallel()

	synth := DataConfig{Symbol: "SYN", Seed: 7, Bars: 50}
	s, err := synth.Load()
	require.NoError(t, err)
	assert.Equal(t, 50, s.Len())
	assert.Equal(t, "synth:seed=7", synth.Dataset())

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "bars.csv")
	fh, err := os.Create(csvPath)
	require.NoError(t, err)
	require.NoError(t, market.WriteCSV(fh, s.Bars()))
	require.NoError(t, fh.Close())

	fromCSV, err := DataConfig{Path: csvPath, Symbol: "SYN"}.Load()
	require.NoError(t, err)
	assert.Equal(t, s.Len(), fromCSV.Len())
	assert.Equal(t, csvPath, DataConfig{Path: csvPath}.Dataset())

	pqPath := filepath.Join(dir, "bars.parquet")
	require.NoError(t, market.WriteParquet(pqPath, s.Bars()))
	fromPQ, err := DataConfig{Path: pqPath, Symbol: "SYN"}.Load()
	require.NoError(t, err)
	assert.Equal(t, s.Len(), fromPQ.Len())
}

func TestJournalOpen(t *testing.T) {
	t.Parallel()

	j, err := JournalConfig{Type: "none"}.Open()
	require.NoError(t, err)
	assert.Nil(t, j)

	dir := t.TempDir()
	j, err = JournalConfig{Type: "sqlite", DBPath: filepath.Join(dir, "db", "runs.db")}.Open()
	require.NoError(t, err)
	assert.IsType(t, &journal.SQLite{}, j)
	require.NoError(t, j.Close())

	j, err = JournalConfig{Type: "csv", Dir: filepath.Join(dir, "csv")}.Open()
	require.NoError(t, err)
	assert.IsType(t, &journal.CSVJournal{}, j)
	require.NoError(t, j.Close())
}

// The default config runs end to end.
func TestDefaultRuns(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Data.Bars = 200
	series, err := cfg.Data.Load()
	require.NoError(t, err)
	strat, err := cfg.NewStrategy()
	require.NoError(t, err)
	bc, err := cfg.Backtest()
	require.NoError(t, err)

	eng, err := backtest.NewEngine(bc)
	require.NoError(t, err)
	res, err := eng.Run(context.Background(), series, strat)
	require.NoError(t, err)
	assert.Equal(t, "sma-cross(10,30)", res.Strategy)
	assert.Equal(t, 0.0, res.Snapshots[len(res.Snapshots)-1].PositionSize)
}
