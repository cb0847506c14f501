package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nWish8/Sandbox/analytics"
	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/config"
	"github.com/nWish8/Sandbox/journal"
	"github.com/nWish8/Sandbox/pkg/id"
	"github.com/nWish8/Sandbox/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run one strategy over a bar series",
	Long: `Backtest replays bars through a strategy: each bar's decision fills at the
next bar's open, and the run ends with a metrics report.

Settings come from a config file (-c) and are overridden by any flag given
on the command line.

Examples:
  sandbox backtest -s sma-cross -p fast=10,slow=30 --data btc.csv --symbol BTCUSDT
  sandbox backtest -c backtest.yaml --journal-db runs.sqlite --org-dir org/`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

var (
	btConfigPath  string
	btStrategy    string
	btParams      map[string]string
	btDataPath    string
	btFormat      string
	btSymbol      string
	btBars        int
	btSeed        int64
	btCash        float64
	btCommission  float64
	btSlippageBps float64
	btAllowShort  bool
	btLiquidate   bool
	btSize        float64
	btLotSize     float64
	btPPY         float64
	btJournalDB   string
	btJournalDir  string
	btOrgDir      string
	btJSON        bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	f := backtestCmd.Flags()
	f.StringVarP(&btConfigPath, "config", "c", "", "config file (YAML or JSON)")
	f.StringVarP(&btStrategy, "strategy", "s", "", "strategy name (see 'sandbox version')")
	f.StringToStringVarP(&btParams, "param", "p", nil, "strategy parameters, e.g. fast=10,slow=30")
	addDataFlags(backtestCmd)
	f.Float64Var(&btCash, "cash", 0, "initial cash")
	f.Float64Var(&btCommission, "commission", 0, "commission as a fraction of notional (0.001 = 0.1%)")
	f.Float64Var(&btSlippageBps, "slippage-bps", 0, "slippage in basis points")
	f.BoolVar(&btAllowShort, "allow-short", false, "allow short positions")
	f.BoolVar(&btLiquidate, "liquidate", true, "close any open position at the last bar")
	f.Float64Var(&btSize, "size", 0, "default entry size as a fraction of equity")
	f.Float64Var(&btLotSize, "lot", 0, "round order sizes down to this lot")
	f.Float64Var(&btPPY, "periods-per-year", 0, "bars per year for annualizing (0 infers from the data)")
	f.StringVar(&btJournalDB, "journal-db", "", "record the run in this SQLite journal")
	f.StringVar(&btJournalDir, "journal-dir", "", "record the run as CSV files in this directory")
	f.StringVar(&btOrgDir, "org-dir", "", "write an Org report of the run into this directory")
	f.BoolVar(&btJSON, "json", false, "print the metrics report as JSON")
}

func addDataFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&btDataPath, "data", "", "bars file (.csv or .parquet); empty generates a random walk")
	f.StringVar(&btFormat, "format", "", "data format: csv, parquet or synth")
	f.StringVar(&btSymbol, "symbol", "", "instrument symbol")
	f.IntVar(&btBars, "bars", 0, "synthetic bars to generate")
	f.Int64Var(&btSeed, "seed", 0, "synthetic data seed")
}

// loadConfig reads -c if given and applies every flag the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if btConfigPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(btConfigPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}
	set("strategy", func() {
		cfg.Strategy.Name = btStrategy
		cfg.Strategy.Params = nil
	})
	if len(btParams) > 0 {
		p, err := parseParams(btParams)
		if err != nil {
			return nil, err
		}
		cfg.Strategy.Params = p
	}
	set("data", func() { cfg.Data.Path = btDataPath })
	set("format", func() { cfg.Data.Format = btFormat })
	set("symbol", func() { cfg.Data.Symbol = btSymbol })
	set("bars", func() { cfg.Data.Bars = btBars })
	set("seed", func() { cfg.Data.Seed = btSeed })
	set("cash", func() { cfg.Account.Balance = btCash })
	set("commission", func() { cfg.Execution.CommissionRate = btCommission })
	set("slippage-bps", func() {
		cfg.Execution.SlippageBps = btSlippageBps
		cfg.Execution.SlippageFixed = 0
	})
	set("allow-short", func() { cfg.Execution.AllowShort = btAllowShort })
	set("liquidate", func() { cfg.Execution.LiquidateAtEnd = btLiquidate })
	set("size", func() { cfg.Execution.PositionSize = btSize })
	set("lot", func() { cfg.Execution.LotSize = btLotSize })
	set("periods-per-year", func() { cfg.Analytics.PeriodsPerYear = btPPY })
	set("journal-db", func() { cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: btJournalDB, OrgDir: cfg.Journal.OrgDir} })
	set("journal-dir", func() { cfg.Journal = config.JournalConfig{Type: "csv", Dir: btJournalDir, OrgDir: cfg.Journal.OrgDir} })
	set("org-dir", func() { cfg.Journal.OrgDir = btOrgDir })

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func parseParams(raw map[string]string) (strategies.Params, error) {
	p := make(strategies.Params, len(raw))
	for k, v := range raw {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", k, err)
		}
		p[k] = x
	}
	return p, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	series, err := cfg.Data.Load()
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	strat, err := cfg.NewStrategy()
	if err != nil {
		return err
	}
	bc, err := cfg.Backtest()
	if err != nil {
		return err
	}
	engine, err := backtest.NewEngine(bc, backtest.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := engine.Run(ctx, series, strat)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	res.RunID = id.New()

	out := cmd.OutOrStdout()
	if btJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			RunID    string           `json:"run_id"`
			Strategy string           `json:"strategy"`
			Symbol   string           `json:"symbol"`
			Report   analytics.Report `json:"report"`
		}{res.RunID, res.Strategy, res.Symbol, res.Report}); err != nil {
			return err
		}
	} else {
		res.Print(out)
	}

	return saveRun(cfg, res)
}

// saveRun journals res and writes its Org report, as configured.
func saveRun(cfg *config.Config, res *backtest.Result) error {
	j, err := cfg.Journal.Open()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j != nil {
		err := journal.Record(j, res, cfg.Data.Dataset())
		if cerr := j.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("journal run: %w", err)
		}
		log.Info("run journaled", zap.String("run_id", res.RunID), zap.String("journal", cfg.Journal.Type))
	}

	if cfg.Journal.OrgDir != "" {
		run, trades, _, err := journal.FromResult(res, cfg.Data.Dataset())
		if err != nil {
			return err
		}
		path, err := journal.WriteRunOrg(cfg.Journal.OrgDir, run, trades)
		if err != nil {
			return fmt.Errorf("write org: %w", err)
		}
		log.Info("org report written", zap.String("path", path))
	}
	return nil
}
