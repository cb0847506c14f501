package indicators

import "github.com/nWish8/Sandbox/market"

// SimpleMA is a streaming Simple Moving Average indicator.
type SimpleMA struct {
	period int
	src    market.Field
	window []float64
}

// NewMA creates a Simple Moving Average over closes.
func NewMA(period int) *SimpleMA { return NewMAOf(period, market.FieldClose) }

// NewMAOf creates a Simple Moving Average over the given bar field.
func NewMAOf(period int, src market.Field) *SimpleMA {
	return &SimpleMA{
		period: period,
		src:    src,
		window: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string { return named("sma", m.src, m.period) }

func (m *SimpleMA) Warmup() int { return m.period }

func (m *SimpleMA) Reset() {
	m.window = m.window[:0]
}

func (m *SimpleMA) Update(b market.Bar) { m.push(source(b, m.src)) }

func (m *SimpleMA) push(x float64) {
	m.window = append(m.window, x)
	// Keep only the last 'period' values
	if len(m.window) > m.period {
		m.window = m.window[1:]
	}
}

func (m *SimpleMA) Ready() bool { return len(m.window) >= m.period }

// Value sums the window on each call.
func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	sum := 0.0
	for _, v := range m.window {
		sum += v
	}
	return sum / float64(len(m.window))
}

// ExponentialMA is a streaming Exponential Moving Average indicator.
type ExponentialMA struct {
	period     int
	src        market.Field
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA creates an Exponential Moving Average over closes.
func NewEMA(period int) *ExponentialMA { return NewEMAOf(period, market.FieldClose) }

// NewEMAOf creates an Exponential Moving Average over the given bar field.
func NewEMAOf(period int, src market.Field) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		src:        src,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string { return named("ema", e.src, e.period) }

func (e *ExponentialMA) Warmup() int { return e.period }

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ExponentialMA) Update(b market.Bar) { e.push(source(b, e.src)) }

func (e *ExponentialMA) push(x float64) {
	if e.count < e.period {
		// During warmup, accumulate sum for initial SMA
		e.warmupSum += x
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (x-e.ema)*e.multiplier + e.ema
}

func (e *ExponentialMA) Ready() bool { return e.count >= e.period }

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
