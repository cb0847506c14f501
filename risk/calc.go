// Package risk turns a strategy's requested size into a concrete quantity.
package risk

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSize is returned for a SizeSpec that cannot be resolved.
var ErrInvalidSize = errors.New("invalid size")

// SizeKind selects how a SizeSpec is interpreted.
type SizeKind int

const (
	// SizeDefault defers to the run's configured default size.
	SizeDefault SizeKind = iota
	SizeUnits
	SizeFraction
	SizeRisk
)

func (k SizeKind) String() string {
	switch k {
	case SizeDefault:
		return "default"
	case SizeUnits:
		return "units"
	case SizeFraction:
		return "fraction"
	case SizeRisk:
		return "risk"
	}
	return fmt.Sprintf("size(%d)", int(k))
}

// SizeSpec is a requested position size.
type SizeSpec struct {
	Kind  SizeKind
	Value float64
	// StopDistance is the price distance to the protective stop; only
	// used by SizeRisk.
	StopDistance float64
}

// Units requests a fixed quantity.
func Units(u float64) SizeSpec { return SizeSpec{Kind: SizeUnits, Value: u} }

// FractionOfEquity requests f of current equity, converted at the price.
func FractionOfEquity(f float64) SizeSpec { return SizeSpec{Kind: SizeFraction, Value: f} }

// RiskFraction sizes so that a move of stopDistance against the position
// loses f of equity.
func RiskFraction(f, stopDistance float64) SizeSpec {
	return SizeSpec{Kind: SizeRisk, Value: f, StopDistance: stopDistance}
}

func (s SizeSpec) IsDefault() bool { return s.Kind == SizeDefault }

func (s SizeSpec) String() string {
	switch s.Kind {
	case SizeUnits:
		return fmt.Sprintf("%g units", s.Value)
	case SizeFraction:
		return fmt.Sprintf("%.2f%% of equity", 100*s.Value)
	case SizeRisk:
		return fmt.Sprintf("%.2f%% risk over %g", 100*s.Value, s.StopDistance)
	}
	return s.Kind.String()
}

// Validate checks the spec independent of market state.
func (s SizeSpec) Validate() error {
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) || s.Value < 0 {
		return fmt.Errorf("%w: %s value must be finite and non-negative, got %g", ErrInvalidSize, s.Kind, s.Value)
	}
	switch s.Kind {
	case SizeDefault, SizeUnits, SizeFraction:
	case SizeRisk:
		if !(s.StopDistance > 0) || math.IsInf(s.StopDistance, 0) {
			return fmt.Errorf("%w: stop distance must be positive, got %g", ErrInvalidSize, s.StopDistance)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidSize, int(s.Kind))
	}
	return nil
}

// Resolve converts the spec to a quantity at the given equity and price,
// floored to a multiple of lotSize when lotSize > 0. A result of zero is
// valid: the caller decides whether a zero-size order is worth sending.
func Resolve(s SizeSpec, equity, price, lotSize float64) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if !(price > 0) {
		return 0, fmt.Errorf("%w: price must be positive, got %g", ErrInvalidSize, price)
	}

	var units float64
	switch s.Kind {
	case SizeUnits:
		units = s.Value
	case SizeFraction:
		units = s.Value * math.Max(equity, 0) / price
	case SizeRisk:
		units = s.Value * math.Max(equity, 0) / s.StopDistance
	default:
		return 0, fmt.Errorf("%w: default size must be replaced before resolving", ErrInvalidSize)
	}
	return Floor(units, lotSize), nil
}

// Floor rounds units down to a multiple of lot. A lot of zero or less
// leaves units unchanged.
func Floor(units, lot float64) float64 {
	if lot <= 0 {
		return units
	}
	// the epsilon keeps 0.3/0.1 from flooring to 2 lots
	return math.Floor(units/lot+1e-9) * lot
}

// RiskPct is the fraction of equity lost if price moves stopDistance
// against a position of units.
func RiskPct(units, stopDistance, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return math.Abs(units) * stopDistance / equity
}
