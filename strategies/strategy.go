// Package strategies holds the built-in strategies and a registry to look
// them up by name.
package strategies

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/risk"
)

// Params are numeric strategy parameters, e.g. {"fast": 10, "slow": 30}.
type Params map[string]float64

// Int returns p[key] as an int, or def when absent.
func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(math.Round(v))
	}
	return def
}

// Float returns p[key], or def when absent.
func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Bool treats any non-zero value as true.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key]; ok {
		return v != 0
	}
	return def
}

// only rejects keys outside allowed so typos do not silently fall back
// to defaults.
func (p Params) only(allowed ...string) error {
	for k := range p {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown parameter %q (allowed: %s)", k, strings.Join(allowed, ", "))
		}
	}
	return nil
}

// size is the entry size: a "size" param is a fraction of equity, and
// without one the run's default applies.
func (p Params) size() (risk.SizeSpec, error) {
	v, ok := p["size"]
	if !ok {
		return risk.SizeSpec{}, nil
	}
	if !(v > 0) || v > 1 {
		return risk.SizeSpec{}, fmt.Errorf("size must be a fraction of equity in (0, 1], got %g", v)
	}
	return risk.FractionOfEquity(v), nil
}

// Factory builds a strategy from its parameters.
type Factory func(Params) (backtest.Strategy, error)

var (
	mu       sync.RWMutex
	registry = make(map[string]Factory)
)

// Register adds a strategy under name, replacing any previous one.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[normalize(name)] = f
}

func Get(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := registry[normalize(name)]
	return f, ok
}

// Names lists the registered strategies, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New builds the named strategy.
func New(name string, params Params) (backtest.Strategy, error) {
	f, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	s, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", normalize(name), err)
	}
	return s, nil
}

func normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

func init() {
	Register("hold", func(p Params) (backtest.Strategy, error) {
		if err := p.only(); err != nil {
			return nil, err
		}
		return Noop{}, nil
	})
	Register("buy-hold", newBuyAndHold)
	Register("sma-cross", newSMACross)
	Register("ema-cross", newEMACross)
	Register("rsi", newRSIReversion)
	Register("macd", newMACDCross)
	Register("bbands", newBollingerReversion)
}
