package market

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrValidation is wrapped by every ValidationError.
var ErrValidation = errors.New("invalid price series")

// ValidationError describes the first malformed bar found in a series.
// It is fatal: a series that fails validation is never partially processed.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: bar %d: %s", ErrValidation, e.Index, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Series is an ordered, immutable sequence of bars with strictly increasing
// timestamps. The zero value is not usable; build one with NewSeries.
type Series struct {
	symbol string
	bars   []Bar
}

// NewSeries validates bars and returns a Series owning a private copy of them.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	if len(bars) == 0 {
		return nil, &ValidationError{Index: -1, Reason: "no bars"}
	}
	for i, b := range bars {
		if reason := b.check(); reason != "" {
			return nil, &ValidationError{Index: i, Reason: reason}
		}
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return nil, &ValidationError{Index: i, Reason: "timestamp not strictly increasing"}
		}
	}

	own := make([]Bar, len(bars))
	copy(own, bars)
	return &Series{symbol: symbol, bars: own}, nil
}

func (s *Series) Symbol() string { return s.symbol }

func (s *Series) Len() int { return len(s.bars) }

// At returns bar i. It panics on an out-of-range index like a slice would.
func (s *Series) At(i int) Bar { return s.bars[i] }

// Bars returns a copy of the underlying bars.
func (s *Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Slice returns the sub-series [from, to). Bounds are clamped, and the
// result is nil when the range is empty.
func (s *Series) Slice(from, to int) *Series {
	if from < 0 {
		from = 0
	}
	if to > len(s.bars) {
		to = len(s.bars)
	}
	if from >= to {
		return nil
	}
	return &Series{symbol: s.symbol, bars: s.bars[from:to:to]}
}

func (s *Series) Start() time.Time { return s.bars[0].Time }

func (s *Series) End() time.Time { return s.bars[len(s.bars)-1].Time }

// Between returns the bars whose time falls in [from, to). A zero bound is
// open. The result is nil when no bar survives the filter.
func (s *Series) Between(from, to time.Time) *Series {
	lo := 0
	if !from.IsZero() {
		lo = sort.Search(len(s.bars), func(i int) bool { return !s.bars[i].Time.Before(from) })
	}
	hi := len(s.bars)
	if !to.IsZero() {
		hi = sort.Search(len(s.bars), func(i int) bool { return !s.bars[i].Time.Before(to) })
	}
	if lo >= hi {
		return nil
	}
	return s.Slice(lo, hi)
}

// Interval returns the most common spacing between consecutive bars, or 0 for
// a single-bar series.
func (s *Series) Interval() time.Duration {
	if len(s.bars) < 2 {
		return 0
	}
	counts := make(map[time.Duration]int)
	var best time.Duration
	for i := 1; i < len(s.bars); i++ {
		d := s.bars[i].Time.Sub(s.bars[i-1].Time)
		counts[d]++
		if counts[d] > counts[best] || (counts[d] == counts[best] && d < best) {
			best = d
		}
	}
	return best
}

// Timeframe returns the interval as a short code such as "H1" or "D1", or ""
// when it has no conventional name.
func (s *Series) Timeframe() string {
	tf, err := SecondsToTFString(int32(s.Interval() / time.Second))
	if err != nil {
		return ""
	}
	return tf
}
