// Package market holds the price substrate the backtest engine iterates
// over: OHLCV bars and validated, immutable series of them.
package market

import (
	"fmt"
	"math"
	"time"
)

// Bar is one OHLCV observation for a fixed time interval.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Field selects which value of a bar an indicator reads.
type Field string

const (
	FieldOpen   Field = "open"
	FieldHigh   Field = "high"
	FieldLow    Field = "low"
	FieldClose  Field = "close"
	FieldVolume Field = "volume"
	FieldHL2    Field = "hl2"  // (high+low)/2
	FieldHLC3   Field = "hlc3" // (high+low+close)/3
)

// Value returns the bar's value for the given field.
func (b Bar) Value(f Field) (float64, error) {
	switch f {
	case FieldOpen:
		return b.Open, nil
	case FieldHigh:
		return b.High, nil
	case FieldLow:
		return b.Low, nil
	case FieldClose, "":
		return b.Close, nil
	case FieldVolume:
		return b.Volume, nil
	case FieldHL2:
		return (b.High + b.Low) / 2, nil
	case FieldHLC3:
		return (b.High + b.Low + b.Close) / 3, nil
	default:
		return 0, fmt.Errorf("unknown bar field %q", f)
	}
}

// check reports the first violated bar invariant, or "" if the bar is sane.
func (b Bar) check() string {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "non-finite value"
		}
	}
	if b.Time.IsZero() {
		return "zero timestamp"
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return "prices must be positive"
	}
	if b.Volume < 0 {
		return "volume must be non-negative"
	}
	if b.Low > b.High {
		return "low above high"
	}
	if b.Open < b.Low || b.Open > b.High {
		return "open outside [low, high]"
	}
	if b.Close < b.Low || b.Close > b.High {
		return "close outside [low, high]"
	}
	return ""
}
