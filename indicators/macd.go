package indicators

import "github.com/nWish8/Sandbox/market"

// MACD tracks the MACD line, its signal line and the histogram together.
type MACD struct {
	fast, slow *ExponentialMA
	signal     *ExponentialMA
	src        market.Field

	line float64
}

func NewMACD(fast, slow, signal int, src market.Field) *MACD {
	return &MACD{
		fast:   NewEMAOf(fast, src),
		slow:   NewEMAOf(slow, src),
		signal: NewEMA(signal),
		src:    src,
	}
}

func (m *MACD) Name() string {
	return named("macd", m.src, m.fast.period, m.slow.period, m.signal.period)
}

func (m *MACD) Warmup() int { return m.slow.period }

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.line = 0
}

func (m *MACD) Update(b market.Bar) {
	x := source(b, m.src)
	m.fast.push(x)
	m.slow.push(x)
	if !m.slow.Ready() {
		return
	}
	m.line = m.fast.Value() - m.slow.Value()
	m.signal.push(m.line)
}

// Ready reports whether the MACD line is available.
func (m *MACD) Ready() bool { return m.slow.Ready() }

// Value returns the MACD line.
func (m *MACD) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.line
}

// SignalReady reports whether the signal line (and histogram) is available.
func (m *MACD) SignalReady() bool { return m.signal.Ready() }

func (m *MACD) Signal() float64 { return m.signal.Value() }

func (m *MACD) Histogram() float64 {
	if !m.SignalReady() {
		return 0
	}
	return m.line - m.signal.Value()
}

// macdPart exposes one output of a MACD as an Indicator of its own.
type macdPart struct {
	*MACD
	part Kind
}

func (p macdPart) Name() string {
	switch p.part {
	case KindMACDSignal:
		return p.MACD.Name() + ".signal"
	case KindMACDHist:
		return p.MACD.Name() + ".hist"
	}
	return p.MACD.Name()
}

func (p macdPart) Warmup() int {
	if p.part == KindMACD {
		return p.MACD.Warmup()
	}
	return p.slow.period + p.signal.period - 1
}

func (p macdPart) Ready() bool {
	if p.part == KindMACD {
		return p.MACD.Ready()
	}
	return p.SignalReady()
}

func (p macdPart) Value() float64 {
	switch p.part {
	case KindMACDSignal:
		return p.Signal()
	case KindMACDHist:
		return p.Histogram()
	}
	return p.MACD.Value()
}
