package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/nWish8/Sandbox/analytics"
	"github.com/nWish8/Sandbox/market"
	"github.com/nWish8/Sandbox/sim"
)

// Result is everything a run produced, as plain records.
type Result struct {
	RunID     string // assigned by the caller, e.g. when journaling
	Strategy  string
	Symbol    string
	Timeframe string
	Start     time.Time
	End       time.Time
	Config    Config

	Snapshots []sim.Snapshot
	Trades    []sim.Trade
	Orders    []sim.Order
	States    []State

	Report analytics.Report
}

func (e *Engine) result(s *market.Series, strat Strategy, l *sim.Ledger, states []State) *Result {
	res := &Result{
		Strategy:  strat.Name(),
		Symbol:    s.Symbol(),
		Timeframe: s.Timeframe(),
		Start:     s.Start(),
		End:       s.End(),
		Config:    e.cfg,
		Snapshots: l.Snapshots(),
		Trades:    l.Trades(),
		Orders:    l.Orders(),
		States:    states,
	}
	res.Report = analytics.Compute(analytics.Input{
		InitialCash:     l.InitialCash(),
		PeriodsPerYear:  e.periodsPerYear(s),
		TotalCommission: l.TotalCommission(),
		Snapshots:       res.Snapshots,
		Trades:          res.Trades,
	})
	return res
}

// Print writes a summary of the run.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	if r.RunID != "" {
		fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	fmt.Fprintf(w, "Symbol:        %s\n", r.Symbol)
	fmt.Fprintf(w, "Timeframe:     %s\n", r.Timeframe)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
	fmt.Fprintf(w, "Bars:          %d\n", len(r.Snapshots))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Execution")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Commission:    %.4f%%\n", r.Config.CommissionRate*100)
	fmt.Fprintf(w, "Allow Short:   %t\n", r.Config.AllowShort)
	if r.Config.LotSize > 0 {
		fmt.Fprintf(w, "Lot Size:      %g\n", r.Config.LotSize)
	}
	fmt.Fprintf(w, "Orders:        %d (%d rejected)\n", len(r.Orders), r.rejected())

	fmt.Fprintln(w)
	r.Report.Print(w)
	fmt.Fprintln(w)
}

func (r *Result) rejected() int {
	n := 0
	for _, o := range r.Orders {
		if o.Status == sim.Rejected {
			n++
		}
	}
	return n
}
