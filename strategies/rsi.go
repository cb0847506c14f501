package strategies

import (
	"fmt"

	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/indicators"
	"github.com/nWish8/Sandbox/risk"
)

// RSIReversion buys when RSI climbs back above Oversold and exits when it
// falls back below Overbought. Only the crossing bar fires, so a long
// stretch in either zone gives one signal.
type RSIReversion struct {
	Period     int
	Oversold   float64
	Overbought float64
	Size       risk.SizeSpec
}

func newRSIReversion(p Params) (backtest.Strategy, error) {
	if err := p.only("period", "oversold", "overbought", "size"); err != nil {
		return nil, err
	}
	s := RSIReversion{
		Period:     p.Int("period", 14),
		Oversold:   p.Float("oversold", 30),
		Overbought: p.Float("overbought", 70),
	}
	if s.Period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", s.Period)
	}
	if !(0 <= s.Oversold && s.Oversold < s.Overbought && s.Overbought <= 100) {
		return nil, fmt.Errorf("need 0 <= oversold < overbought <= 100, got %g/%g", s.Oversold, s.Overbought)
	}
	var err error
	if s.Size, err = p.size(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s RSIReversion) Name() string {
	return fmt.Sprintf("rsi(%d,%g,%g)", s.Period, s.Oversold, s.Overbought)
}

func (s RSIReversion) Indicators() []indicators.Spec {
	return []indicators.Spec{{Name: "rsi", Kind: indicators.KindRSI, Period: s.Period}}
}

func (s RSIReversion) Decide(c backtest.Context) backtest.Action {
	prev, ok1 := c.Indicators.Previous("rsi")
	cur, ok2 := c.Indicators.Value("rsi")
	if !ok1 || !ok2 {
		return backtest.Action{}
	}

	switch {
	case c.Position.IsFlat() && prev < s.Oversold && cur >= s.Oversold:
		return backtest.Long(s.Size).Because(fmt.Sprintf("rsi %.1f -> %.1f above %g", prev, cur, s.Oversold))
	case c.Position.Size > 0 && prev > s.Overbought && cur <= s.Overbought:
		return backtest.Flatten().Because(fmt.Sprintf("rsi %.1f -> %.1f below %g", prev, cur, s.Overbought))
	}
	return backtest.Action{}
}
