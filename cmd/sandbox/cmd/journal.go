package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nWish8/Sandbox/journal"
	"github.com/nWish8/Sandbox/market"
	"github.com/nWish8/Sandbox/pkg/id"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded backtest runs",
	Long: `Query and display backtest runs recorded in a SQLite journal.

Subcommands:
  runs    - List recorded runs, newest first
  show    - Print a run as an Org report
  trades  - Print a run's trades as Org entries
  equity  - Export a run's equity curve as CSV

Examples:
  sandbox journal runs -n 10
  sandbox journal show <run-id>
  sandbox journal equity <run-id> > equity.csv`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a run as an Org report",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "Print a run's trades as Org entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity <run-id>",
	Short: "Export a run's equity curve as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEquity,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalEquityCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./sandbox.sqlite", "path to SQLite journal DB")
	journalRunsCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "runs to list (0 for all)")
}

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns(journalLimit)
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tSTRATEGY\tSYMBOL\tBARS\tRETURN\tSHARPE\tTRADES")
	for _, r := range runs {
		created := r.Created
		if t, err := id.Time(r.RunID); err == nil {
			created = t
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f%%\t%s\t%d\n",
			r.RunID, created.Local().Format(time.DateTime), r.Strategy, r.Symbol, r.Bars, r.ReturnPct(), r.Report.Sharpe, r.Trades)
	}
	return tw.Flush()
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	out, err := j.ExportRunOrg(args[0])
	if err != nil {
		return fmt.Errorf("export run: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	if _, err := j.GetRun(args[0]); err != nil {
		return err
	}
	recs, err := j.ListTradesByRunID(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListEquityByRunID(args[0])
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}
	if len(recs) == 0 {
		return fmt.Errorf("run %q: %w", args[0], journal.ErrNotFound)
	}

	// Equity goes out in the bar CSV layout with open/high/low/close all
	// set to equity, so it loads back with market.LoadCSV.
	bars := make([]market.Bar, len(recs))
	for i, r := range recs {
		bars[i] = market.Bar{Time: r.Time, Open: r.Equity, High: r.Equity, Low: r.Equity, Close: r.Equity}
	}
	return market.WriteCSV(cmd.OutOrStdout(), bars)
}
