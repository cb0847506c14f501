// Package indicators provides technical analysis indicators for backtests.
//
// Every indicator is a streaming state machine fed one closed bar at a time,
// so the value after bar i depends only on bars [0..i]. Compute turns a
// streaming indicator into a same-length Line over a whole Series.
//
// Conventions (double precision throughout):
//
//	SMA(n)        mean of the last n values; valid from index n-1
//	EMA(n)        alpha = 2/(n+1); seeded with SMA(n) at index n-1, then
//	              ema += alpha*(x-ema)
//	RSI(n)        Wilder: first avg gain/loss is the mean of the first n
//	              changes (valid at index n), then avg = (avg*(n-1)+x)/n;
//	              avgLoss == 0 gives 100, or 50 when avgGain is also 0
//	MACD(f,s,g)   EMA(f)-EMA(s), valid with EMA(s); signal is EMA(g) of the
//	              MACD line; histogram is line-signal
//	BBands(n,k)   middle SMA(n), bands at k population standard deviations
//	ATR(n)        Wilder smoothing of true range; valid at index n
//	ADX(n)        Wilder DX of smoothed +DM/-DM over TR, averaged over n
//	              DX values; valid at index 2n-1
package indicators

import (
	"fmt"
	"strings"

	"github.com/nWish8/Sandbox/market"
)

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to use in backtests.
type Indicator interface {
	// Name returns a stable identifier like "ema(20)" or "rsi(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() is true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current value, or 0 before Ready().
	Value() float64
}

// source extracts the configured field; Spec validation guarantees it is
// a known field, so the error is impossible here.
func source(b market.Bar, f market.Field) float64 {
	v, _ := b.Value(f)
	return v
}

// named builds an indicator name such as "sma(20)" or "sma(20,hl2)". The
// source is left out when it is close.
func named(kind string, src market.Field, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	if src != "" && src != market.FieldClose {
		parts = append(parts, string(src))
	}
	return kind + "(" + strings.Join(parts, ",") + ")"
}
