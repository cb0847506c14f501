package backtest

import (
	"errors"
	"fmt"
	"math"

	"github.com/nWish8/Sandbox/risk"
	"github.com/nWish8/Sandbox/sim"
)

// ErrInvalidConfig is returned before a run starts when its Config is
// unusable.
var ErrInvalidConfig = errors.New("invalid backtest config")

// Config holds everything that shapes a run besides the data and the
// strategy. It is passed by value so concurrent runs cannot share it.
type Config struct {
	InitialCash    float64
	CommissionRate float64      // fraction of notional per fill
	Slippage       sim.Slippage // nil means no slippage
	AllowShort     bool
	LotSize        float64 // 0 disables flooring

	// PeriodsPerYear annualizes Sharpe and friends. 0 derives it from the
	// series timeframe.
	PeriodsPerYear float64

	// LiquidateAtEnd closes any open position at the last bar's close.
	LiquidateAtEnd bool

	// DefaultSize is used when an Action carries no size.
	DefaultSize risk.SizeSpec
}

// DefaultConfig mirrors the defaults of the CLI: 10,000 cash, 0.1%
// commission and 95% of equity per entry.
func DefaultConfig() Config {
	return Config{
		InitialCash:    10000,
		CommissionRate: 0.001,
		DefaultSize:    risk.FractionOfEquity(0.95),
	}
}

func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.InitialCash) || math.IsInf(c.InitialCash, 0) || c.InitialCash <= 0:
		return fmt.Errorf("%w: initial cash must be positive, got %g", ErrInvalidConfig, c.InitialCash)
	case math.IsNaN(c.CommissionRate) || c.CommissionRate < 0 || c.CommissionRate >= 1:
		return fmt.Errorf("%w: commission rate must be in [0, 1), got %g", ErrInvalidConfig, c.CommissionRate)
	case math.IsNaN(c.LotSize) || c.LotSize < 0:
		return fmt.Errorf("%w: lot size must be non-negative, got %g", ErrInvalidConfig, c.LotSize)
	case math.IsNaN(c.PeriodsPerYear) || c.PeriodsPerYear < 0:
		return fmt.Errorf("%w: periods per year must be non-negative, got %g", ErrInvalidConfig, c.PeriodsPerYear)
	}
	if err := c.DefaultSize.Validate(); err != nil {
		return fmt.Errorf("%w: default size: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) defaultSize() risk.SizeSpec {
	if c.DefaultSize.IsDefault() {
		return risk.FractionOfEquity(0.95)
	}
	return c.DefaultSize
}
