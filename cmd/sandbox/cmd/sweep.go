package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/pkg/id"
	"github.com/nWish8/Sandbox/strategies"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a strategy over a grid of parameters in parallel",
	Long: `Sweep runs one backtest per point of a parameter grid over the same data and
prints a comparison table. Each --grid flag names one parameter and its
values; the grid is their cartesian product.

Examples:
  sandbox sweep -s sma-cross --grid fast=5,10,20 --grid slow=30,50
  sandbox sweep -c backtest.yaml --grid period=7,14,21 -j 4 --journal-db runs.sqlite`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

var (
	swGrid     []string
	swParallel int
)

func init() {
	rootCmd.AddCommand(sweepCmd)

	f := sweepCmd.Flags()
	f.StringVarP(&btConfigPath, "config", "c", "", "config file (YAML or JSON)")
	f.StringVarP(&btStrategy, "strategy", "s", "", "strategy name")
	f.StringArrayVar(&swGrid, "grid", nil, "parameter values, e.g. fast=5,10,20 (repeatable)")
	f.IntVarP(&swParallel, "parallel", "j", runtime.NumCPU(), "runs at a time")
	addDataFlags(sweepCmd)
	f.StringVar(&btJournalDB, "journal-db", "", "record every run in this SQLite journal")
	f.StringVar(&btJournalDir, "journal-dir", "", "record every run as CSV files in this directory")
	sweepCmd.MarkFlagRequired("grid")
}

type gridAxis struct {
	name   string
	values []float64
}

func parseGrid(specs []string) ([]gridAxis, error) {
	var axes []gridAxis
	seen := map[string]bool{}
	for _, s := range specs {
		name, list, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || list == "" {
			return nil, fmt.Errorf("grid %q: want name=v1,v2,...", s)
		}
		if seen[name] {
			return nil, fmt.Errorf("grid %q: %s given twice", s, name)
		}
		seen[name] = true

		axis := gridAxis{name: name}
		for _, v := range strings.Split(list, ",") {
			x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("grid %s: %w", name, err)
			}
			axis.values = append(axis.values, x)
		}
		axes = append(axes, axis)
	}
	return axes, nil
}

// expand returns the cartesian product of axes layered over base, in
// row-major order: the last axis varies fastest.
func expand(base strategies.Params, axes []gridAxis) []strategies.Params {
	out := []strategies.Params{{}}
	for k, v := range base {
		out[0][k] = v
	}
	for _, axis := range axes {
		next := make([]strategies.Params, 0, len(out)*len(axis.values))
		for _, p := range out {
			for _, v := range axis.values {
				q := make(strategies.Params, len(p)+1)
				for k, x := range p {
					q[k] = x
				}
				q[axis.name] = v
				next = append(next, q)
			}
		}
		out = next
	}
	return out
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	axes, err := parseGrid(swGrid)
	if err != nil {
		return err
	}

	series, err := cfg.Data.Load()
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	bc, err := cfg.Backtest()
	if err != nil {
		return err
	}

	var jobs []backtest.Job
	for _, p := range expand(cfg.Strategy.Params, axes) {
		strat, err := strategies.New(cfg.Strategy.Name, p)
		if err != nil {
			return err
		}
		jobs = append(jobs, backtest.Job{Name: strat.Name(), Series: series, Strategy: strat, Config: bc})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := backtest.RunAll(ctx, jobs, swParallel, backtest.WithLogger(log))
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	for _, res := range results {
		res.RunID = id.New()
		if err := saveRun(cfg, res); err != nil {
			return err
		}
	}

	printSweep(cmd.OutOrStdout(), results)
	return nil
}

// printSweep prints one row per run, best Sharpe first. Runs without a
// Sharpe sort last, ties keep grid order.
func printSweep(w io.Writer, results []*backtest.Result) {
	rows := append([]*backtest.Result(nil), results...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Report.Sharpe, rows[j].Report.Sharpe
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Value > b.Value
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tRETURN\tSHARPE\tMAX DD\tTRADES\tWIN RATE\tRUN ID")
	for _, r := range rows {
		rep := r.Report
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Strategy, rep.TotalReturn.Pct(), rep.Sharpe, rep.MaxDrawdown.Pct(), rep.Trades, rep.WinRate.Pct(), r.RunID)
	}
	tw.Flush()
}
