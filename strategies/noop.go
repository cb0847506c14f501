package strategies

import (
	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/indicators"
	"github.com/nWish8/Sandbox/risk"
)

// Noop never trades.
type Noop struct{}

func (Noop) Name() string                            { return "hold" }
func (Noop) Indicators() []indicators.Spec           { return nil }
func (Noop) Decide(backtest.Context) backtest.Action { return backtest.Action{} }

// BuyAndHold goes long whenever flat and never exits.
type BuyAndHold struct {
	Size risk.SizeSpec
}

func newBuyAndHold(p Params) (backtest.Strategy, error) {
	if err := p.only("size"); err != nil {
		return nil, err
	}
	size, err := p.size()
	if err != nil {
		return nil, err
	}
	return BuyAndHold{Size: size}, nil
}

func (BuyAndHold) Name() string                  { return "buy-hold" }
func (BuyAndHold) Indicators() []indicators.Spec { return nil }

func (s BuyAndHold) Decide(c backtest.Context) backtest.Action {
	if c.Position.IsFlat() {
		return backtest.Long(s.Size).Because("buy and hold")
	}
	return backtest.Action{}
}
