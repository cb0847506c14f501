package indicators

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nWish8/Sandbox/market"
)

// ErrInvalidSpec is returned for a Spec that cannot be built.
var ErrInvalidSpec = errors.New("invalid indicator spec")

// Kind names an indicator output.
type Kind string

const (
	KindSMA        Kind = "sma"
	KindEMA        Kind = "ema"
	KindRSI        Kind = "rsi"
	KindMACD       Kind = "macd"
	KindMACDSignal Kind = "macd_signal"
	KindMACDHist   Kind = "macd_hist"
	KindBBUpper    Kind = "bbands_upper"
	KindBBMiddle   Kind = "bbands_middle"
	KindBBLower    Kind = "bbands_lower"
	KindATR        Kind = "atr"
	KindADX        Kind = "adx"
)

// Spec describes one indicator line. Period is used by sma, ema, rsi, atr,
// adx and the bands; Fast/Slow/Signal by the MACD kinds; K by the bands.
type Spec struct {
	// Name is the key strategies look the line up by. Defaults to the
	// indicator's own name, e.g. "ema(20)".
	Name   string
	Kind   Kind
	Period int
	Source market.Field

	Fast, Slow, Signal int
	K                  float64
}

// Key returns the lookup name of the line the spec produces.
func (s Spec) Key() string {
	if s.Name != "" {
		return s.Name
	}
	ind, err := New(s)
	if err != nil {
		return string(s.Kind)
	}
	return ind.Name()
}

// Validate checks the spec without building the indicator.
func (s Spec) Validate() error {
	if _, err := (market.Bar{}).Value(s.Source); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	switch s.Kind {
	case KindSMA, KindEMA, KindRSI, KindATR, KindADX:
		if s.Period <= 0 {
			return fmt.Errorf("%w: %s period must be positive, got %d", ErrInvalidSpec, s.Kind, s.Period)
		}
	case KindBBUpper, KindBBMiddle, KindBBLower:
		if s.Period <= 0 {
			return fmt.Errorf("%w: %s period must be positive, got %d", ErrInvalidSpec, s.Kind, s.Period)
		}
		if s.K <= 0 {
			return fmt.Errorf("%w: %s k must be positive, got %g", ErrInvalidSpec, s.Kind, s.K)
		}
	case KindMACD, KindMACDSignal, KindMACDHist:
		if s.Fast <= 0 || s.Slow <= 0 || s.Signal <= 0 {
			return fmt.Errorf("%w: %s periods must be positive", ErrInvalidSpec, s.Kind)
		}
		if s.Fast >= s.Slow {
			return fmt.Errorf("%w: %s fast (%d) must be below slow (%d)", ErrInvalidSpec, s.Kind, s.Fast, s.Slow)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}
	return nil
}

// New builds a fresh streaming indicator for the spec.
func New(s Spec) (Indicator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	src := s.Source
	if src == "" {
		src = market.FieldClose
	}

	switch s.Kind {
	case KindSMA:
		return NewMAOf(s.Period, src), nil
	case KindEMA:
		return NewEMAOf(s.Period, src), nil
	case KindRSI:
		return NewRSI(s.Period, src), nil
	case KindATR:
		return NewATR(s.Period), nil
	case KindADX:
		return NewADX(s.Period), nil
	case KindMACD, KindMACDSignal, KindMACDHist:
		return macdPart{MACD: NewMACD(s.Fast, s.Slow, s.Signal, src), part: s.Kind}, nil
	default: // bands
		return bandPart{Bollinger: NewBollinger(s.Period, s.K, src), part: s.Kind}, nil
	}
}

// Line is an indicator evaluated over a whole series: one value per bar,
// with Valid[i] false while the indicator is warming up.
type Line struct {
	Name   string
	Values []float64
	Valid  []bool
}

// At returns the value at bar i and whether it is defined. Out-of-range
// indices are undefined rather than a panic.
func (l Line) At(i int) (float64, bool) {
	if i < 0 || i >= len(l.Values) || !l.Valid[i] {
		return 0, false
	}
	return l.Values[i], true
}

func (l Line) Len() int { return len(l.Values) }

// Compute evaluates the spec over every bar of the series.
func Compute(s *market.Series, spec Spec) (Line, error) {
	ind, err := New(spec)
	if err != nil {
		return Line{}, err
	}

	n := s.Len()
	line := Line{
		Name:   spec.Key(),
		Values: make([]float64, n),
		Valid:  make([]bool, n),
	}
	for i := 0; i < n; i++ {
		ind.Update(s.At(i))
		if ind.Ready() {
			line.Values[i] = ind.Value()
			line.Valid[i] = true
		}
	}
	return line, nil
}

// normalized fills in the defaults so equivalent specs compare equal.
func (s Spec) normalized() Spec {
	s.Name = s.Key()
	switch {
	case s.Kind == KindATR || s.Kind == KindADX:
		s.Source = ""
	case s.Source == "":
		s.Source = market.FieldClose
	}
	return s
}

// ComputeAll evaluates every spec concurrently. Specs share nothing but the
// read-only series. Equivalent specs under one name are computed once; one
// name used for different specs is rejected.
func ComputeAll(ctx context.Context, s *market.Series, specs []Spec) (map[string]Line, error) {
	byKey := make(map[string]Spec, len(specs))
	unique := make([]Spec, 0, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		n := spec.normalized()
		if prev, ok := byKey[n.Name]; ok {
			if prev != n {
				return nil, fmt.Errorf("%w: indicator name %q used for different specs", ErrInvalidSpec, n.Name)
			}
			continue
		}
		byKey[n.Name] = n
		unique = append(unique, n)
	}

	lines := make([]Line, len(unique))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range unique {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			l, err := Compute(s, spec)
			if err != nil {
				return err
			}
			lines[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]Line, len(lines))
	for _, l := range lines {
		out[l.Name] = l
	}
	return out, nil
}
