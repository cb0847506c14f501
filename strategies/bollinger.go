package strategies

import (
	"fmt"

	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/indicators"
	"github.com/nWish8/Sandbox/risk"
)

// BollingerReversion buys a close at or under the lower band and sells a
// close at or over the upper band.
type BollingerReversion struct {
	Period int
	K      float64
	Size   risk.SizeSpec
}

func newBollingerReversion(p Params) (backtest.Strategy, error) {
	if err := p.only("period", "k", "size"); err != nil {
		return nil, err
	}
	s := BollingerReversion{Period: p.Int("period", 20), K: p.Float("k", 2)}
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

func (s BollingerReversion) Name() string { return fmt.Sprintf("bbands(%d,%g)", s.Period, s.K) }

func (s BollingerReversion) Indicators() []indicators.Spec {
	return []indicators.Spec{
		{Name: "upper", Kind: indicators.KindBBUpper, Period: s.Period, K: s.K},
		{Name: "lower", Kind: indicators.KindBBLower, Period: s.Period, K: s.K},
	}
}

func (s BollingerReversion) Decide(c backtest.Context) backtest.Action {
	upper, ok1 := c.Indicators.Value("upper")
	lower, ok2 := c.Indicators.Value("lower")
	if !ok1 || !ok2 {
		return backtest.Action{}
	}

	price := c.Bar.Close
	switch {
	case c.Position.IsFlat() && price <= lower:
		return backtest.Long(s.Size).Because(fmt.Sprintf("close %.2f at lower band %.2f", price, lower))
	case c.Position.Size > 0 && price >= upper:
		return backtest.Flatten().Because(fmt.Sprintf("close %.2f at upper band %.2f", price, upper))
	}
	return backtest.Action{}
}
