package strategies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/indicators"
	"github.com/nWish8/Sandbox/market"
	"github.com/nWish8/Sandbox/risk"
	"github.com/nWish8/Sandbox/sim"
)

// line builds an indicator line; NaN-free, every value valid.
func line(name string, xs ...float64) indicators.Line {
	l := indicators.Line{Name: name, Values: xs, Valid: make([]bool, len(xs))}
	for i := range l.Valid {
		l.Valid[i] = true
	}
	return l
}

// ctxAt is a context at bar 1 over two-point lines.
func ctxAt(pos sim.Position, close float64, lines ...indicators.Line) backtest.Context {
	m := make(map[string]indicators.Line, len(lines))
	for _, l := range lines {
		m[l.Name] = l
	}
	return backtest.Context{
		BarIndex:   1,
		Bar:        market.Bar{Open: close, High: close, Low: close, Close: close},
		Indicators: backtest.NewSnapshot(m, 1),
		Position:   pos,
	}
}

var (
	flat  = sim.Position{}
	long  = sim.Position{Size: 10, AvgEntryPrice: 100}
	short = sim.Position{Size: -10, AvgEntryPrice: 100}
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"bbands", "buy-hold", "ema-cross", "hold", "macd", "rsi", "sma-cross"}, Names())

	for _, name := range Names() {
		s, err := New(name, nil)
		require.NoError(t, err, name)
		assert.NotEmpty(t, s.Name())
		for _, spec := range s.Indicators() {
			assert.NoError(t, spec.Validate(), name)
		}
	}

	s, err := New("SMA_Cross", Params{"fast": 5, "slow": 20})
	require.NoError(t, err)
	assert.Equal(t, "sma-cross(5,20)", s.Name())

	_, err = New("nope", nil)
	assert.ErrorContains(t, err, "unknown strategy")
}

func TestNewRejectsBadParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		strategy string
		params   Params
	}{
		{"unknown key", "sma-cross", Params{"fats": 5}},
		{"fast not below slow", "ema-cross", Params{"fast": 30, "slow": 10}},
		{"zero period", "rsi", Params{"period": 0}},
		{"inverted thresholds", "rsi", Params{"oversold": 80, "overbought": 20}},
		{"macd fast above slow", "macd", Params{"fast": 30}},
		{"negative k", "bbands", Params{"k": -1}},
		{"adx out of range", "ema-cross", Params{"adx": 120}},
		{"adx without period", "sma-cross", Params{"adx": 20, "adx-period": 0}},
		{"size above one", "buy-hold", Params{"size": 1.5}},
		{"hold takes nothing", "hold", Params{"size": 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.strategy, tt.params)
			assert.Error(t, err)
		})
	}
}

func TestParams(t *testing.T) {
	p := Params{"fast": 9.6, "reverse": 1, "k": 2.5}
	assert.Equal(t, 10, p.Int("fast", 0))
	assert.Equal(t, 3, p.Int("slow", 3))
	assert.True(t, p.Bool("reverse", false))
	assert.Equal(t, 2.5, p.Float("k", 0))

	size, err := Params{"size": 0.5}.size()
	require.NoError(t, err)
	assert.Equal(t, risk.FractionOfEquity(0.5), size)

	size, err = Params{}.size()
	require.NoError(t, err)
	assert.True(t, size.IsDefault())
}

func TestBuyAndHold(t *testing.T) {
	s, err := New("buy-hold", Params{"size": 0.5})
	require.NoError(t, err)

	a := s.Decide(ctxAt(flat, 100))
	assert.Equal(t, backtest.EnterLong, a.Kind)
	assert.Equal(t, risk.FractionOfEquity(0.5), a.Size)
	assert.Equal(t, backtest.Hold, s.Decide(ctxAt(long, 100)).Kind)
	assert.Equal(t, backtest.Hold, Noop{}.Decide(ctxAt(flat, 100)).Kind)
}

func TestMACross(t *testing.T) {
	up := []indicators.Line{line("fast", 9, 11), line("slow", 10, 10)}
	down := []indicators.Line{line("fast", 11, 9), line("slow", 10, 10)}
	none := []indicators.Line{line("fast", 11, 12), line("slow", 10, 10)}

	plain := MACross{Kind: indicators.KindSMA, Fast: 2, Slow: 5}
	rev := MACross{Kind: indicators.KindEMA, Fast: 2, Slow: 5, Reverse: true}

	tests := []struct {
		name  string
		s     MACross
		pos   sim.Position
		lines []indicators.Line
		want  backtest.ActionKind
	}{
		{"cross up while flat", plain, flat, up, backtest.EnterLong},
		{"cross up while long", plain, long, up, backtest.Hold},
		{"cross up while short", plain, short, up, backtest.EnterLong},
		{"cross down while long", plain, long, down, backtest.Exit},
		{"cross down while flat", plain, flat, down, backtest.Hold},
		{"reverse cross down while long", rev, long, down, backtest.EnterShort},
		{"reverse cross down while short", rev, short, down, backtest.Hold},
		{"no cross", plain, long, none, backtest.Hold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.s.Decide(ctxAt(tt.pos, 100, tt.lines...))
			assert.Equal(t, tt.want, a.Kind)
		})
	}

	t.Run("adx filter", func(t *testing.T) {
		filtered := MACross{Kind: indicators.KindEMA, Fast: 2, Slow: 5, Reverse: true, ADXMin: 25, ADXPeriod: 14}
		strong := line("adx", 30, 30)
		weak := line("adx", 30, 20)

		assert.Equal(t, backtest.EnterLong, filtered.Decide(ctxAt(flat, 100, append(up, strong)...)).Kind)
		assert.Equal(t, backtest.Hold, filtered.Decide(ctxAt(flat, 100, append(up, weak)...)).Kind)
		assert.Equal(t, backtest.Hold, filtered.Decide(ctxAt(flat, 100, up...)).Kind, "adx warming up")
		assert.Equal(t, backtest.Exit, filtered.Decide(ctxAt(short, 100, append(up, weak)...)).Kind)
		assert.Equal(t, backtest.EnterShort, filtered.Decide(ctxAt(long, 100, append(down, strong)...)).Kind)
		assert.Equal(t, backtest.Exit, filtered.Decide(ctxAt(long, 100, append(down, weak)...)).Kind)

		assert.Equal(t, "ema-cross(2,5,adx14>=25)", filtered.Name())
		specs := filtered.Indicators()
		require.Len(t, specs, 3)
		assert.Equal(t, indicators.KindADX, specs[2].Kind)
	})

	assert.Equal(t, "ema-cross(2,5)", rev.Name())
	specs := plain.Indicators()
	require.Len(t, specs, 2)
	assert.Equal(t, "fast", specs[0].Key())
	assert.Equal(t, 5, specs[1].Period)
}

func TestRSIReversion(t *testing.T) {
	s := RSIReversion{Period: 14, Oversold: 30, Overbought: 70}

	tests := []struct {
		name string
		pos  sim.Position
		rsi  indicators.Line
		want backtest.ActionKind
	}{
		{"leaves oversold while flat", flat, line("rsi", 25, 31), backtest.EnterLong},
		{"touches oversold from below", flat, line("rsi", 29, 30), backtest.EnterLong},
		{"still oversold", flat, line("rsi", 20, 25), backtest.Hold},
		{"leaves oversold while long", long, line("rsi", 25, 31), backtest.Hold},
		{"leaves overbought while long", long, line("rsi", 75, 69), backtest.Exit},
		{"leaves overbought while flat", flat, line("rsi", 75, 69), backtest.Hold},
		{"warming up", flat, indicators.Line{Name: "rsi", Values: []float64{0, 31}, Valid: []bool{false, true}}, backtest.Hold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := s.Decide(ctxAt(tt.pos, 100, tt.rsi))
			assert.Equal(t, tt.want, a.Kind)
			if tt.want != backtest.Hold {
				assert.NotEmpty(t, a.Reason)
			}
		})
	}
}

func TestMACDCross(t *testing.T) {
	s := MACDCross{Fast: 12, Slow: 26, Signal: 9}
	up := []indicators.Line{line("macd", -1, 1), line("signal", 0, 0)}
	down := []indicators.Line{line("macd", 1, -1), line("signal", 0, 0)}

	assert.Equal(t, backtest.EnterLong, s.Decide(ctxAt(flat, 100, up...)).Kind)
	assert.Equal(t, backtest.Hold, s.Decide(ctxAt(long, 100, up...)).Kind)
	assert.Equal(t, backtest.Exit, s.Decide(ctxAt(long, 100, down...)).Kind)
	assert.Equal(t, backtest.Hold, s.Decide(ctxAt(flat, 100, down...)).Kind)
}

func TestBollingerReversion(t *testing.T) {
	s := BollingerReversion{Period: 20, K: 2}
	bands := []indicators.Line{line("upper", 110, 110), line("lower", 90, 90)}

	assert.Equal(t, backtest.EnterLong, s.Decide(ctxAt(flat, 90, bands...)).Kind)
	assert.Equal(t, backtest.Hold, s.Decide(ctxAt(flat, 100, bands...)).Kind)
	assert.Equal(t, backtest.Exit, s.Decide(ctxAt(long, 111, bands...)).Kind)
	assert.Equal(t, backtest.Hold, s.Decide(ctxAt(long, 100, bands...)).Kind)
	assert.Equal(t, backtest.Hold, s.Decide(ctxAt(flat, 50)).Kind)
}

// Every built-in runs end to end on a synthetic series without error.
func TestStrategiesRunInEngine(t *testing.T) {
	t.Parallel()

	p := market.DefaultWalk()
	p.Bars = 400
	series, err := market.RandomWalk("TEST", p)
	require.NoError(t, err)

	cfg := backtest.DefaultConfig()
	cfg.AllowShort = true
	eng, err := backtest.NewEngine(cfg)
	require.NoError(t, err)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s, err := New(name, nil)
			require.NoError(t, err)
			res, err := eng.Run(context.Background(), series, s)
			require.NoError(t, err)
			assert.Len(t, res.Snapshots, series.Len())
			assert.Equal(t, s.Name(), res.Strategy)
		})
	}

	t.Run("ema-cross with adx filter", func(t *testing.T) {
		t.Parallel()
		s, err := New("ema-cross", Params{"adx": 20, "reverse": 1})
		require.NoError(t, err)
		res, err := eng.Run(context.Background(), series, s)
		require.NoError(t, err)
		assert.Len(t, res.Snapshots, series.Len())
		assert.Equal(t, "ema-cross(12,26,adx14>=20)", res.Strategy)
	})
}
