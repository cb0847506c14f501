package backtest

import (
	"fmt"
	"strings"
	"time"

	"github.com/nWish8/Sandbox/indicators"
	"github.com/nWish8/Sandbox/market"
	"github.com/nWish8/Sandbox/risk"
	"github.com/nWish8/Sandbox/sim"
)

// Strategy is the decision logic of a run. Decide is called once per bar
// after pending orders have settled, and sees only what Context exposes:
// the closed bar, indicator values at this bar and the one before, and
// the portfolio. It must not keep references into Context between calls.
type Strategy interface {
	Name() string
	Indicators() []indicators.Spec
	Decide(Context) Action
}

// StrategyFunc adapts a plain decision function. It uses no indicators.
type StrategyFunc func(Context) Action

func (f StrategyFunc) Name() string                  { return "func" }
func (f StrategyFunc) Indicators() []indicators.Spec { return nil }
func (f StrategyFunc) Decide(c Context) Action       { return f(c) }

type namedStrategy struct {
	name  string
	specs []indicators.Spec
	fn    func(Context) Action
}

// Named builds a Strategy from a name, the indicators it reads and a
// decision function.
func Named(name string, specs []indicators.Spec, fn func(Context) Action) Strategy {
	return namedStrategy{name: name, specs: specs, fn: fn}
}

func (s namedStrategy) Name() string                  { return s.name }
func (s namedStrategy) Indicators() []indicators.Spec { return s.specs }
func (s namedStrategy) Decide(c Context) Action       { return s.fn(c) }

type chain []Strategy

// Chain composes strategies: the first one that does not Hold decides.
// All members read one indicator set, so a line name they share must mean
// the same spec in each; Run fails with indicators.ErrInvalidSpec if not.
func Chain(strategies ...Strategy) Strategy { return chain(strategies) }

func (c chain) Name() string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

func (c chain) Indicators() []indicators.Spec {
	var out []indicators.Spec
	for _, s := range c {
		out = append(out, s.Indicators()...)
	}
	return out
}

func (c chain) Decide(ctx Context) Action {
	for _, s := range c {
		if a := s.Decide(ctx); a.Kind != Hold {
			return a
		}
	}
	return Action{}
}

// ActionKind is what a strategy wants done.
type ActionKind int

const (
	Hold ActionKind = iota
	EnterLong
	EnterShort
	Exit
)

func (k ActionKind) String() string {
	switch k {
	case Hold:
		return "hold"
	case EnterLong:
		return "enter_long"
	case EnterShort:
		return "enter_short"
	case Exit:
		return "exit"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is the result of one decision. The zero value holds.
type Action struct {
	Kind   ActionKind
	Size   risk.SizeSpec // zero means the run's default size
	Reason string
}

// Long enters or adds to a long position. While short it reverses.
func Long(size risk.SizeSpec) Action { return Action{Kind: EnterLong, Size: size} }

// Short enters or adds to a short position. While long it reverses.
func Short(size risk.SizeSpec) Action { return Action{Kind: EnterShort, Size: size} }

// Flatten exits the whole position.
func Flatten() Action { return Action{Kind: Exit} }

// Because attaches a reason for the journal.
func (a Action) Because(reason string) Action {
	a.Reason = reason
	return a
}

// Context is the state visible to a strategy at one bar.
type Context struct {
	BarIndex   int
	Time       time.Time
	Bar        market.Bar
	Indicators Snapshot
	Position   sim.Position
	Cash       float64
	Equity     float64 // cash plus position at this bar's close
	State      State
}

// Snapshot exposes indicator lines at the current bar and the one before
// it, and nothing else.
type Snapshot struct {
	lines map[string]indicators.Line
	index int
}

// Value is the named indicator at the current bar; false during warm-up
// or for an unknown name.
func (s Snapshot) Value(name string) (float64, bool) {
	l, ok := s.lines[name]
	if !ok {
		return 0, false
	}
	return l.At(s.index)
}

// Previous is the named indicator at the previous bar.
func (s Snapshot) Previous(name string) (float64, bool) {
	l, ok := s.lines[name]
	if !ok {
		return 0, false
	}
	return l.At(s.index - 1)
}

// CrossedAbove reports whether line a moved from at or below b on the
// previous bar to above b on this one.
func (s Snapshot) CrossedAbove(a, b string) bool {
	a0, ok1 := s.Previous(a)
	b0, ok2 := s.Previous(b)
	a1, ok3 := s.Value(a)
	b1, ok4 := s.Value(b)
	return ok1 && ok2 && ok3 && ok4 && a0 <= b0 && a1 > b1
}

// CrossedBelow reports whether line a moved from at or above b on the
// previous bar to below b on this one.
func (s Snapshot) CrossedBelow(a, b string) bool {
	a0, ok1 := s.Previous(a)
	b0, ok2 := s.Previous(b)
	a1, ok3 := s.Value(a)
	b1, ok4 := s.Value(b)
	return ok1 && ok2 && ok3 && ok4 && a0 >= b0 && a1 < b1
}

// NewSnapshot exposes lines at bar index. The engine builds these itself;
// it is exported for testing strategies in isolation.
func NewSnapshot(lines map[string]indicators.Line, index int) Snapshot {
	return Snapshot{lines: lines, index: index}
}
