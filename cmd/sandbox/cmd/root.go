package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nWish8/Sandbox/internal/logger"
)

var (
	logLevel  string
	logFormat string

	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "A bar-by-bar strategy backtester",
	Long: `Sandbox replays OHLCV bars through a trading strategy and reports how it
would have done.

It provides tools for:
  - Backtesting built-in strategies against CSV, Parquet or synthetic bars
  - Parameter sweeps run in parallel
  - Journaling runs, trades and equity curves to SQLite or CSV
  - Generating deterministic synthetic data`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(logLevel, logFormat)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log encoding (console, json)")
}
