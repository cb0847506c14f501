package market

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// WalkParams configures RandomWalk.
type WalkParams struct {
	Seed       int64
	Bars       int
	Start      time.Time
	Interval   time.Duration
	StartPrice float64
	Drift      float64 // mean per-bar return, e.g. 0.001
	Volatility float64 // stdev of per-bar return, e.g. 0.02
	Range      float64 // max intrabar excursion as a fraction, e.g. 0.005
}

// DefaultWalk mirrors the sample data the project has always shipped with:
// 1000 hourly bars starting at 50,000 with a slight upward drift.
func DefaultWalk() WalkParams {
	return WalkParams{
		Seed:       42,
		Bars:       1000,
		Start:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:   time.Hour,
		StartPrice: 50000,
		Drift:      0.001,
		Volatility: 0.02,
		Range:      0.005,
	}
}

// RandomWalk generates a synthetic OHLCV series. The same params always
// produce the same bars.
func RandomWalk(symbol string, p WalkParams) (*Series, error) {
	if p.Bars <= 0 {
		return nil, fmt.Errorf("random walk: bars must be positive, got %d", p.Bars)
	}
	if p.StartPrice <= 0 {
		return nil, fmt.Errorf("random walk: start price must be positive, got %g", p.StartPrice)
	}
	if p.Interval <= 0 {
		return nil, fmt.Errorf("random walk: interval must be positive, got %s", p.Interval)
	}

	rng := rand.New(rand.NewSource(p.Seed))
	bars := make([]Bar, p.Bars)
	price := p.StartPrice

	for i := range bars {
		price *= 1 + p.Drift + p.Volatility*rng.NormFloat64()
		if price <= 0 {
			price = p.StartPrice * 1e-6
		}

		open := price * (1 + (rng.Float64()-0.5)*p.Range)
		high := math.Max(open, price) * (1 + rng.Float64()*p.Range)
		low := math.Min(open, price) * (1 - rng.Float64()*p.Range)

		bars[i] = Bar{
			Time:   p.Start.Add(time.Duration(i) * p.Interval),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 100 + rng.Float64()*900,
		}
	}
	return NewSeries(symbol, bars)
}
