package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Metric is a number that may be undefined for the given history, e.g. a
// Sharpe ratio over a flat equity curve. An undefined Metric prints as
// "n/a" and marshals to JSON null; it is never NaN or Inf.
type Metric struct {
	Value float64
	Valid bool
}

// NA is the "not applicable" metric.
func NA() Metric { return Metric{} }

// Of wraps v, mapping NaN and Inf to NA.
func Of(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA()
	}
	return Metric{Value: v, Valid: true}
}

// Or returns the value, or def when the metric is not applicable.
func (m Metric) Or(def float64) float64 {
	if !m.Valid {
		return def
	}
	return m.Value
}

func (m Metric) String() string {
	if !m.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", m.Value)
}

// Pct formats the metric as a percentage.
func (m Metric) Pct() string {
	if !m.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", 100*m.Value)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*m = NA()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = Of(v)
	return nil
}
