package indicators

import (
	"fmt"
	"math"

	"github.com/nWish8/Sandbox/market"
)

// ADX implements Wilder's Average Directional Index: trend strength in
// [0, 100] regardless of direction.
//
//	adx := indicators.NewADX(14)
//	adx.Update(bar)
//	if adx.Ready() && adx.Value() >= 20 { ... }
type ADX struct {
	period int

	prev     market.Bar
	havePrev bool

	// Wilder-smoothed TR, +DM and -DM once samples reaches period.
	samples      int
	tr, pdm, mdm float64

	dxCount int
	dxSum   float64
	adx     float64
}

func NewADX(period int) *ADX {
	return &ADX{period: period}
}

func (a *ADX) Name() string { return fmt.Sprintf("adx(%d)", a.period) }

// Warmup: one seed bar, period bars to seed TR/DM (the last of which
// yields the first DX), then period-1 more DX values to seed the ADX.
func (a *ADX) Warmup() int { return 2 * a.period }

func (a *ADX) Reset() { *a = ADX{period: a.period} }

func (a *ADX) Update(b market.Bar) {
	if !a.havePrev {
		a.prev = b
		a.havePrev = true
		return
	}

	upMove := b.High - a.prev.High
	downMove := a.prev.Low - b.Low

	var pdm, mdm float64
	if upMove > downMove && upMove > 0 {
		pdm = upMove
	}
	if downMove > upMove && downMove > 0 {
		mdm = downMove
	}
	tr := trueRange(b, a.prev)
	a.prev = b
	a.samples++

	n := float64(a.period)
	if a.samples <= a.period {
		a.tr += tr
		a.pdm += pdm
		a.mdm += mdm
		if a.samples < a.period {
			return
		}
		a.tr /= n
		a.pdm /= n
		a.mdm /= n
	} else {
		a.tr = (a.tr*(n-1) + tr) / n
		a.pdm = (a.pdm*(n-1) + pdm) / n
		a.mdm = (a.mdm*(n-1) + mdm) / n
	}

	dx := a.dx()
	if a.dxCount < a.period {
		a.dxSum += dx
		a.dxCount++
		if a.dxCount == a.period {
			a.adx = a.dxSum / n
		}
		return
	}
	a.adx = (a.adx*(n-1) + dx) / n
}

// dx is 0 when there is no range or no directional movement.
func (a *ADX) dx() float64 {
	if a.tr == 0 {
		return 0
	}
	pdi := 100 * a.pdm / a.tr
	mdi := 100 * a.mdm / a.tr
	den := pdi + mdi
	if den == 0 {
		return 0
	}
	return 100 * math.Abs(pdi-mdi) / den
}

func (a *ADX) Ready() bool { return a.dxCount >= a.period }

func (a *ADX) Value() float64 {
	if !a.Ready() {
		return 0
	}
	return a.adx
}
