package indicators

import "github.com/nWish8/Sandbox/market"

// RSI is Wilder's Relative Strength Index.
type RSI struct {
	period int
	src    market.Field

	prev     float64
	havePrev bool

	avgGain float64
	avgLoss float64
	changes int
}

func NewRSI(period int, src market.Field) *RSI {
	return &RSI{period: period, src: src}
}

func (r *RSI) Name() string { return named("rsi", r.src, r.period) }

// Warmup is period+1: the first average needs period price changes.
func (r *RSI) Warmup() int { return r.period + 1 }

func (r *RSI) Reset() {
	r.prev, r.havePrev = 0, false
	r.avgGain, r.avgLoss = 0, 0
	r.changes = 0
}

func (r *RSI) Update(b market.Bar) {
	x := source(b, r.src)
	if !r.havePrev {
		r.prev = x
		r.havePrev = true
		return
	}

	delta := x - r.prev
	r.prev = x

	var gain, loss float64
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	r.changes++
	p := float64(r.period)
	switch {
	case r.changes < r.period:
		r.avgGain += gain
		r.avgLoss += loss
	case r.changes == r.period:
		r.avgGain = (r.avgGain + gain) / p
		r.avgLoss = (r.avgLoss + loss) / p
	default:
		r.avgGain = (r.avgGain*(p-1) + gain) / p
		r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	}
}

func (r *RSI) Ready() bool { return r.changes >= r.period }

func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgLoss == 0 {
		if r.avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
