package analytics

import (
	"fmt"
	"io"
)

// Print writes a human readable summary of the report.
func (r Report) Print(w io.Writer) {
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Equity:  %.2f\n", r.InitialCash)
	fmt.Fprintf(w, "End Equity:    %.2f\n", r.FinalEquity)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", r.FinalEquity-r.InitialCash)
	fmt.Fprintf(w, "Return:        %s\n", r.TotalReturn.Pct())
	fmt.Fprintf(w, "Annualized:    %s\n", r.AnnualizedReturn.Pct())
	fmt.Fprintf(w, "Max Drawdown:  %s\n", r.MaxDrawdown.Pct())
	fmt.Fprintf(w, "Sharpe:        %s\n", r.Sharpe)
	fmt.Fprintf(w, "Sortino:       %s\n", r.Sortino)
	fmt.Fprintf(w, "Calmar:        %s\n", r.Calmar)
	fmt.Fprintf(w, "Exposure:      %s\n", r.Exposure.Pct())
	fmt.Fprintf(w, "Commission:    %.2f\n", r.TotalCommission)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", r.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", r.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", r.Losses)
	fmt.Fprintf(w, "Win Rate:      %s\n", r.WinRate.Pct())
	fmt.Fprintf(w, "Profit Factor: %s\n", r.ProfitFactor)
	fmt.Fprintf(w, "Expectancy:    %s\n", r.Expectancy)
	fmt.Fprintf(w, "Avg Trade:     %s\n", r.AvgTradePct.Pct())
	if r.Trades > 0 {
		fmt.Fprintf(w, "Largest Win:   %.2f\n", r.LargestWin)
		fmt.Fprintf(w, "Largest Loss:  %.2f\n", r.LargestLoss)
	}
}
