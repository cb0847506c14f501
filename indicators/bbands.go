package indicators

import (
	"gonum.org/v1/gonum/stat"

	"github.com/nWish8/Sandbox/market"
)

// Bollinger computes Bollinger Bands over a rolling window.
type Bollinger struct {
	sma *SimpleMA
	k   float64
}

func NewBollinger(period int, k float64, src market.Field) *Bollinger {
	return &Bollinger{sma: NewMAOf(period, src), k: k}
}

func (bb *Bollinger) Name() string {
	return named("bbands", bb.sma.src, bb.sma.period, bb.k)
}

func (bb *Bollinger) Warmup() int { return bb.sma.period }

func (bb *Bollinger) Reset() { bb.sma.Reset() }

func (bb *Bollinger) Update(b market.Bar) { bb.sma.Update(b) }

func (bb *Bollinger) Ready() bool { return bb.sma.Ready() }

// Value returns the middle band.
func (bb *Bollinger) Value() float64 { return bb.sma.Value() }

// Bands returns (lower, middle, upper). All zero before Ready().
func (bb *Bollinger) Bands() (lower, middle, upper float64) {
	if !bb.Ready() {
		return 0, 0, 0
	}
	mean, std := stat.PopMeanStdDev(bb.sma.window, nil)
	return mean - bb.k*std, mean, mean + bb.k*std
}

type bandPart struct {
	*Bollinger
	part Kind
}

func (p bandPart) Name() string {
	switch p.part {
	case KindBBUpper:
		return p.Bollinger.Name() + ".upper"
	case KindBBLower:
		return p.Bollinger.Name() + ".lower"
	}
	return p.Bollinger.Name() + ".middle"
}

func (p bandPart) Value() float64 {
	lower, middle, upper := p.Bands()
	switch p.part {
	case KindBBUpper:
		return upper
	case KindBBLower:
		return lower
	}
	return middle
}
