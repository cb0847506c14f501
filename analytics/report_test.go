package analytics

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nWish8/Sandbox/sim"
)

func curve(equity ...float64) []sim.Snapshot {
	out := make([]sim.Snapshot, len(equity))
	for i, e := range equity {
		out[i] = sim.Snapshot{BarIndex: i, Cash: e, Equity: e}
	}
	return out
}

func TestMetricNA(t *testing.T) {
	assert.Equal(t, NA(), Of(math.NaN()))
	assert.Equal(t, NA(), Of(math.Inf(-1)))
	assert.Equal(t, "n/a", NA().String())
	assert.Equal(t, "n/a", NA().Pct())
	assert.Equal(t, "12.50%", Of(0.125).Pct())
	assert.Equal(t, 3.0, NA().Or(3))

	b, err := json.Marshal(struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}{NA(), Of(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":1.5}`, string(b))

	var m struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.False(t, m.A.Valid)
	assert.Equal(t, Of(1.5), m.B)
}

func TestComputeEmptyHistory(t *testing.T) {
	r := Compute(Input{InitialCash: 1000})

	assert.Equal(t, 1000.0, r.FinalEquity)
	assert.False(t, r.TotalReturn.Valid)
	assert.False(t, r.MaxDrawdown.Valid)
	assert.False(t, r.Sharpe.Valid)
	assert.False(t, r.WinRate.Valid)
	assert.False(t, r.ProfitFactor.Valid)
	assert.False(t, r.Expectancy.Valid)
}

// Zero trades over a run: win rate and profit factor are not applicable,
// not zero.
func TestZeroTradesAreNotApplicable(t *testing.T) {
	r := Compute(Input{InitialCash: 1000, Snapshots: curve(1000, 1000, 1000, 1000, 1000)})

	assert.Equal(t, 0, r.Trades)
	assert.Equal(t, NA(), r.WinRate)
	assert.Equal(t, NA(), r.ProfitFactor)
	assert.Equal(t, Of(0), r.TotalReturn)
	assert.Equal(t, Of(0), r.MaxDrawdown)
	assert.Equal(t, NA(), r.Sharpe, "flat curve has zero variance")
	assert.Equal(t, NA(), r.Sortino)
	assert.Equal(t, NA(), r.Calmar)
	assert.Equal(t, Of(0), r.Exposure)
}

func TestReturnsAndDrawdown(t *testing.T) {
	eq := []float64{110, 99, 121}
	rets := Returns(100, eq)
	require.Len(t, rets, 3)
	assert.InDelta(t, 0.10, rets[0], 1e-12)
	assert.InDelta(t, -0.10, rets[1], 1e-12)
	assert.InDelta(t, 121.0/99-1, rets[2], 1e-12)

	dd := MaxDrawdown(100, eq)
	assert.InDelta(t, 0.10, dd.Value, 1e-12)

	// a curve that only falls measures from the initial cash
	assert.InDelta(t, 0.2, MaxDrawdown(100, []float64{90, 80, 85}).Value, 1e-12)
	assert.Equal(t, Of(0), MaxDrawdown(100, []float64{101, 102}))
}

func TestSharpe(t *testing.T) {
	rets := []float64{0.01, -0.02, 0.03, 0.00}
	mean := 0.005
	var ss float64
	for _, r := range rets {
		ss += (r - mean) * (r - mean)
	}
	sd := math.Sqrt(ss / 3)

	got := Sharpe(rets, 252)
	require.True(t, got.Valid)
	assert.InDelta(t, mean/sd*math.Sqrt(252), got.Value, 1e-9)

	assert.Equal(t, NA(), Sharpe([]float64{0.01}, 252))
	assert.Equal(t, NA(), Sharpe([]float64{0.01, 0.01, 0.01}, 252))
}

func TestSortinoAndAnnualized(t *testing.T) {
	rets := []float64{0.02, -0.01, 0.03, -0.02}
	dd := math.Sqrt((0.0001 + 0.0004) / 4)
	got := Sortino(rets, 252)
	require.True(t, got.Valid)
	assert.InDelta(t, 0.005/dd*math.Sqrt(252), got.Value, 1e-9)
	assert.Equal(t, NA(), Sortino([]float64{0.01, 0.02}, 252))

	ann := AnnualizedReturn(100, 121, 2, 1)
	assert.InDelta(t, 0.1, ann.Value, 1e-12)
	assert.Equal(t, NA(), AnnualizedReturn(100, 0, 10, 252))
	assert.Equal(t, NA(), AnnualizedReturn(100, 110, 0, 252))
}

func TestTradeStats(t *testing.T) {
	trades := []sim.Trade{
		{PnL: 30, PnLPct: 0.03},
		{PnL: -10, PnLPct: -0.01},
		{PnL: 20, PnLPct: 0.02},
		{PnL: -5, PnLPct: -0.005},
		{PnL: 0},
	}
	r := Compute(Input{InitialCash: 1000, Snapshots: curve(1035), Trades: trades})

	assert.Equal(t, 5, r.Trades)
	assert.Equal(t, 2, r.Wins)
	assert.Equal(t, 2, r.Losses)
	assert.InDelta(t, 0.4, r.WinRate.Value, 1e-12)
	assert.InDelta(t, 50.0/15, r.ProfitFactor.Value, 1e-12)
	assert.InDelta(t, 35.0/5, r.Expectancy.Value, 1e-12)
	assert.InDelta(t, 0.035/5, r.AvgTradePct.Value, 1e-12)
	assert.InDelta(t, 25, r.AvgWin.Value, 1e-12)
	assert.InDelta(t, -7.5, r.AvgLoss.Value, 1e-12)
	assert.Equal(t, 30.0, r.LargestWin)
	assert.Equal(t, -10.0, r.LargestLoss)
	assert.Equal(t, 35.0, r.NetPnL)
}

func TestNoLosersProfitFactorNA(t *testing.T) {
	r := Compute(Input{InitialCash: 100, Trades: []sim.Trade{{PnL: 5}, {PnL: 1}}})
	assert.Equal(t, NA(), r.ProfitFactor)
	assert.Equal(t, Of(1), r.WinRate)
	assert.Equal(t, NA(), r.AvgLoss)
}

func TestComputeIsIdempotent(t *testing.T) {
	in := Input{
		InitialCash:    1000,
		PeriodsPerYear: 8760,
		Snapshots:      curve(1000, 1010, 995, 1030, 1020, 1050),
		Trades:         []sim.Trade{{PnL: 30}, {PnL: -12}, {PnL: 32}},
	}
	in.Snapshots[2].PositionSize = 1
	in.Snapshots[3].PositionSize = 1

	first := Compute(in)
	second := Compute(in)
	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.InDelta(t, 2.0/6, first.Exposure.Value, 1e-12)
	assert.True(t, first.Calmar.Valid)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Compute(Input{InitialCash: 1000, Snapshots: curve(1000, 1000)}).Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "Trade Statistics")
	assert.Contains(t, out, "Win Rate:      n/a")
	assert.Contains(t, out, "Profit Factor: n/a")
	assert.Contains(t, out, "Return:        0.00%")
}
