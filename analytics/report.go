// Package analytics reduces an equity curve and trade history to
// performance metrics. Every function here is a pure reduction: the same
// input always gives a bit-identical Report.
//
// Per-bar returns are r[t] = equity[t]/equity[t-1] - 1 with equity[-1]
// taken as the initial cash, so a run of n bars has n returns.
package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/nWish8/Sandbox/sim"
)

// DefaultPeriodsPerYear annualizes daily bars.
const DefaultPeriodsPerYear = 252

// Input is the recorded history of one run.
type Input struct {
	InitialCash     float64
	PeriodsPerYear  float64 // <= 0 means DefaultPeriodsPerYear
	TotalCommission float64
	Snapshots       []sim.Snapshot
	Trades          []sim.Trade
}

// Report is the metric set of one run.
type Report struct {
	InitialCash float64 `json:"initial_cash"`
	FinalEquity float64 `json:"final_equity"`
	Bars        int     `json:"bars"`

	TotalReturn      Metric `json:"total_return"`
	AnnualizedReturn Metric `json:"annualized_return"`
	MaxDrawdown      Metric `json:"max_drawdown"`
	Sharpe           Metric `json:"sharpe"`
	Sortino          Metric `json:"sortino"`
	Calmar           Metric `json:"calmar"`
	Exposure         Metric `json:"exposure"`

	Trades       int    `json:"trades"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	WinRate      Metric `json:"win_rate"`
	ProfitFactor Metric `json:"profit_factor"`
	Expectancy   Metric `json:"expectancy"`
	AvgTradePct  Metric `json:"avg_trade_pct"`
	AvgWin       Metric `json:"avg_win"`
	AvgLoss      Metric `json:"avg_loss"`

	GrossProfit     float64 `json:"gross_profit"`
	GrossLoss       float64 `json:"gross_loss"`
	NetPnL          float64 `json:"net_pnl"`
	LargestWin      float64 `json:"largest_win"`
	LargestLoss     float64 `json:"largest_loss"`
	TotalCommission float64 `json:"total_commission"`
}

// Compute builds the Report for in.
func Compute(in Input) Report {
	ppy := in.PeriodsPerYear
	if ppy <= 0 {
		ppy = DefaultPeriodsPerYear
	}

	r := Report{
		InitialCash:     in.InitialCash,
		FinalEquity:     in.InitialCash,
		Bars:            len(in.Snapshots),
		TotalCommission: in.TotalCommission,
	}

	equity := make([]float64, len(in.Snapshots))
	exposed := 0
	for i, s := range in.Snapshots {
		equity[i] = s.Equity
		if s.PositionSize != 0 {
			exposed++
		}
	}
	if n := len(equity); n > 0 {
		r.FinalEquity = equity[n-1]
		r.Exposure = Of(float64(exposed) / float64(n))
		if in.InitialCash > 0 {
			r.TotalReturn = Of(r.FinalEquity/in.InitialCash - 1)
		}
	}

	r.AnnualizedReturn = AnnualizedReturn(in.InitialCash, r.FinalEquity, len(equity), ppy)
	r.MaxDrawdown = MaxDrawdown(in.InitialCash, equity)

	rets := Returns(in.InitialCash, equity)
	r.Sharpe = Sharpe(rets, ppy)
	r.Sortino = Sortino(rets, ppy)
	if r.MaxDrawdown.Valid && r.MaxDrawdown.Value > 0 && r.AnnualizedReturn.Valid {
		r.Calmar = Of(r.AnnualizedReturn.Value / r.MaxDrawdown.Value)
	}

	tradeStats(&r, in.Trades)
	return r
}

// Returns is the per-bar simple return series of equity, starting from
// initial.
func Returns(initial float64, equity []float64) []float64 {
	out := make([]float64, 0, len(equity))
	prev := initial
	for _, e := range equity {
		if prev == 0 {
			out = append(out, 0)
		} else {
			out = append(out, e/prev-1)
		}
		prev = e
	}
	return out
}

// MaxDrawdown is the largest fall from a running peak, as a fraction of
// that peak. The peak starts at the initial cash.
func MaxDrawdown(initial float64, equity []float64) Metric {
	if len(equity) == 0 {
		return NA()
	}
	peak := initial
	maxDD := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			if dd := (peak - e) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return Of(maxDD)
}

// Sharpe is mean/stdev of returns scaled by sqrt(periodsPerYear), with the
// sample (n-1) standard deviation and a zero risk-free rate.
func Sharpe(returns []float64, periodsPerYear float64) Metric {
	if len(returns) < 2 {
		return NA()
	}
	sd := stat.StdDev(returns, nil)
	if sd == 0 {
		return NA()
	}
	return Of(stat.Mean(returns, nil) / sd * math.Sqrt(periodsPerYear))
}

// Sortino is like Sharpe but divides by the downside deviation
// sqrt(mean(min(r,0)^2)).
func Sortino(returns []float64, periodsPerYear float64) Metric {
	if len(returns) < 2 {
		return NA()
	}
	var sumSq float64
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
		}
	}
	if sumSq == 0 {
		return NA()
	}
	dd := math.Sqrt(sumSq / float64(len(returns)))
	return Of(stat.Mean(returns, nil) / dd * math.Sqrt(periodsPerYear))
}

// AnnualizedReturn compounds the total return over periods bars to a
// yearly rate.
func AnnualizedReturn(initial, final float64, periods int, periodsPerYear float64) Metric {
	if periods == 0 || initial <= 0 || final <= 0 {
		return NA()
	}
	return Of(math.Pow(final/initial, periodsPerYear/float64(periods)) - 1)
}

func tradeStats(r *Report, trades []sim.Trade) {
	r.Trades = len(trades)
	if len(trades) == 0 {
		return
	}

	var sumPct float64
	for _, t := range trades {
		r.NetPnL += t.PnL
		sumPct += t.PnLPct
		switch {
		case t.PnL > 0:
			r.Wins++
			r.GrossProfit += t.PnL
			r.LargestWin = math.Max(r.LargestWin, t.PnL)
		case t.PnL < 0:
			r.Losses++
			r.GrossLoss += t.PnL
			r.LargestLoss = math.Min(r.LargestLoss, t.PnL)
		}
	}

	n := float64(len(trades))
	r.WinRate = Of(float64(r.Wins) / n)
	r.Expectancy = Of(r.NetPnL / n)
	r.AvgTradePct = Of(sumPct / n)
	if r.Wins > 0 {
		r.AvgWin = Of(r.GrossProfit / float64(r.Wins))
	}
	if r.Losses > 0 {
		r.AvgLoss = Of(r.GrossLoss / float64(r.Losses))
		r.ProfitFactor = Of(r.GrossProfit / math.Abs(r.GrossLoss))
	}
}
