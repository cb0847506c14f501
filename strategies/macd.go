package strategies

import (
	"fmt"

	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/indicators"
	"github.com/nWish8/Sandbox/risk"
)

// MACDCross goes long when the MACD line crosses above its signal line
// and exits on the cross back below.
type MACDCross struct {
	Fast, Slow, Signal int
	Size               risk.SizeSpec
}

func newMACDCross(p Params) (backtest.Strategy, error) {
	if err := p.only("fast", "slow", "signal", "size"); err != nil {
		return nil, err
	}
	s := MACDCross{
		Fast:   p.Int("fast", 12),
		Slow:   p.Int("slow", 26),
		Signal: p.Int("signal", 9),
	}
	for _, spec := range s.Indicators() {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
	}
	var err error
	if s.Size, err = p.size(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s MACDCross) Name() string {
	return fmt.Sprintf("macd(%d,%d,%d)", s.Fast, s.Slow, s.Signal)
}

func (s MACDCross) Indicators() []indicators.Spec {
	return []indicators.Spec{
		{Name: "macd", Kind: indicators.KindMACD, Fast: s.Fast, Slow: s.Slow, Signal: s.Signal},
		{Name: "signal", Kind: indicators.KindMACDSignal, Fast: s.Fast, Slow: s.Slow, Signal: s.Signal},
	}
}

func (s MACDCross) Decide(c backtest.Context) backtest.Action {
	switch {
	case c.Position.IsFlat() && c.Indicators.CrossedAbove("macd", "signal"):
		return backtest.Long(s.Size).Because("macd crossed above signal")
	case c.Position.Size > 0 && c.Indicators.CrossedBelow("macd", "signal"):
		return backtest.Flatten().Because("macd crossed below signal")
	}
	return backtest.Action{}
}
