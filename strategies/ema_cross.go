package strategies

import (
	"fmt"

	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/indicators"
	"github.com/nWish8/Sandbox/risk"
)

// MACross trades a fast/slow moving average crossover.
//   - Enters long when fast crosses above slow
//   - Exits when fast crosses below slow, or reverses short if Reverse
//   - A long cross while short reverses long
//
// With ADXMin set, a cross only opens a position while ADX(ADXPeriod) is
// at or above ADXMin; exits are never filtered.
type MACross struct {
	Kind       indicators.Kind // sma or ema
	Fast, Slow int
	Size       risk.SizeSpec
	Reverse    bool

	ADXMin    float64
	ADXPeriod int
}

func newMACross(kind indicators.Kind, fast, slow int) Factory {
	return func(p Params) (backtest.Strategy, error) {
		if err := p.only("fast", "slow", "size", "reverse", "adx", "adx-period"); err != nil {
			return nil, err
		}
		s := MACross{
			Kind:      kind,
			Fast:      p.Int("fast", fast),
			Slow:      p.Int("slow", slow),
			Reverse:   p.Bool("reverse", false),
			ADXMin:    p.Float("adx", 0),
			ADXPeriod: p.Int("adx-period", 14),
		}
		if s.Fast <= 0 || s.Fast >= s.Slow {
			return nil, fmt.Errorf("need 0 < fast < slow, got fast=%d slow=%d", s.Fast, s.Slow)
		}
		if s.ADXMin < 0 || s.ADXMin > 100 {
			return nil, fmt.Errorf("adx must be in [0, 100], got %g", s.ADXMin)
		}
		if s.ADXMin > 0 && s.ADXPeriod <= 0 {
			return nil, fmt.Errorf("adx-period must be positive, got %d", s.ADXPeriod)
		}
		var err error
		if s.Size, err = p.size(); err != nil {
			return nil, err
		}
		return s, nil
	}
}

var (
	newSMACross = newMACross(indicators.KindSMA, 10, 30)
	newEMACross = newMACross(indicators.KindEMA, 12, 26)
)

func (s MACross) Name() string {
	if s.ADXMin > 0 {
		return fmt.Sprintf("%s-cross(%d,%d,adx%d>=%g)", s.Kind, s.Fast, s.Slow, s.ADXPeriod, s.ADXMin)
	}
	return fmt.Sprintf("%s-cross(%d,%d)", s.Kind, s.Fast, s.Slow)
}

func (s MACross) Indicators() []indicators.Spec {
	specs := []indicators.Spec{
		{Name: "fast", Kind: s.Kind, Period: s.Fast},
		{Name: "slow", Kind: s.Kind, Period: s.Slow},
	}
	if s.ADXMin > 0 {
		specs = append(specs, indicators.Spec{Name: "adx", Kind: indicators.KindADX, Period: s.ADXPeriod})
	}
	return specs
}

// trending reports whether the ADX filter lets a new position open.
func (s MACross) trending(c backtest.Context) bool {
	if s.ADXMin <= 0 {
		return true
	}
	v, ok := c.Indicators.Value("adx")
	return ok && v >= s.ADXMin
}

func (s MACross) Decide(c backtest.Context) backtest.Action {
	switch {
	case c.Indicators.CrossedAbove("fast", "slow"):
		if c.Position.Size > 0 {
			break
		}
		if s.trending(c) {
			return backtest.Long(s.Size).Because("fast crossed above slow")
		}
		if c.Position.Size < 0 {
			return backtest.Flatten().Because("fast crossed above slow, trend too weak to reverse")
		}
	case c.Indicators.CrossedBelow("fast", "slow"):
		if s.Reverse && c.Position.Size >= 0 && s.trending(c) {
			return backtest.Short(s.Size).Because("fast crossed below slow")
		}
		if c.Position.Size > 0 {
			return backtest.Flatten().Because("fast crossed below slow")
		}
	}
	return backtest.Action{}
}
